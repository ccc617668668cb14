// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package repositories

import (
	"fmt"

	"geostats/internal/database/models"
	"geostats/internal/stats"

	"gorm.io/gorm"
)

const insertBatchSize = 500

// RunRepository persists analysis runs with their count tables and detail rows.
type RunRepository interface {
	Save(run *models.AnalysisRun, dims []stats.Dimension, details []stats.DetailRecord) error
	SaveAccess(s *stats.AccessStats) (*models.AnalysisRun, error)
	SaveErrors(s *stats.ErrorStats) (*models.AnalysisRun, error)
	SaveSuccessful(s *stats.SuccessfulRequestStats) (*models.AnalysisRun, error)
	FindAll() ([]*models.AnalysisRun, error)
	FindDimension(runID uint, dimension string) ([]*models.DimensionCount, error)
	CountRequests(runID uint) (int64, error)
}

type runRepo struct {
	db *gorm.DB
}

// NewRunRepository returns a RunRepository backed by db.
func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepo{db: db}
}

// Save stores the run, its count tables and detail records in one transaction
func (r *runRepo) Save(run *models.AnalysisRun, dims []stats.Dimension, details []stats.DetailRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("create run: %w", err)
		}

		var counts []models.DimensionCount
		for _, d := range dims {
			for _, item := range d.Table.Items() {
				counts = append(counts, models.DimensionCount{
					RunID:     run.ID,
					Dimension: d.Name,
					Key:       item.Key,
					Count:     item.Count,
				})
			}
		}
		if len(counts) > 0 {
			if err := tx.CreateInBatches(counts, insertBatchSize).Error; err != nil {
				return fmt.Errorf("insert dimension counts: %w", err)
			}
		}

		if len(details) == 0 {
			return nil
		}
		requests := make([]models.SuccessfulRequest, 0, len(details))
		for _, d := range details {
			requests = append(requests, toRequestModel(run.ID, d))
		}
		if err := tx.CreateInBatches(requests, insertBatchSize).Error; err != nil {
			return fmt.Errorf("insert successful requests: %w", err)
		}
		return nil
	})
}

func (r *runRepo) SaveAccess(s *stats.AccessStats) (*models.AnalysisRun, error) {
	run := newRun("access", s.TotalRequests, s.TotalUniqueIPs, s.Run)
	return run, r.Save(run, s.Dimensions(), nil)
}

func (r *runRepo) SaveErrors(s *stats.ErrorStats) (*models.AnalysisRun, error) {
	run := newRun("error", s.TotalErrors, s.ErrorsByIP.Len(), s.Run)
	return run, r.Save(run, s.Dimensions(), nil)
}

func (r *runRepo) SaveSuccessful(s *stats.SuccessfulRequestStats) (*models.AnalysisRun, error) {
	run := newRun("successful", s.TotalSuccessfulRequests, s.UniqueIPs, s.Run)
	return run, r.Save(run, s.Dimensions(), s.Records())
}

func (r *runRepo) FindAll() ([]*models.AnalysisRun, error) {
	var runs []*models.AnalysisRun
	err := r.db.Order("id DESC").Find(&runs).Error
	return runs, err
}

func (r *runRepo) FindDimension(runID uint, dimension string) ([]*models.DimensionCount, error) {
	var counts []*models.DimensionCount
	err := r.db.Where("run_id = ? AND dimension = ?", runID, dimension).
		Order("count DESC, id ASC").
		Find(&counts).Error
	return counts, err
}

func (r *runRepo) CountRequests(runID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.SuccessfulRequest{}).Where("run_id = ?", runID).Count(&count).Error
	return count, err
}

func newRun(kind string, total, uniqueIPs int, run stats.RunStats) *models.AnalysisRun {
	return &models.AnalysisRun{
		Kind:            kind,
		Total:           total,
		UniqueIPs:       uniqueIPs,
		FilesFound:      run.FilesFound,
		FilesProcessed:  run.FilesProcessed,
		FilesFailed:     run.FilesFailed,
		LinesRead:       run.LinesRead,
		Accepted:        run.Accepted,
		Unparsed:        run.Unparsed,
		NotSuccessful:   run.NotSuccessful,
		FilteredSelfIP:  run.FilteredSelfIP,
		FilteredCountry: run.FilteredCountry,
	}
}

func toRequestModel(runID uint, d stats.DetailRecord) models.SuccessfulRequest {
	return models.SuccessfulRequest{
		RunID:        runID,
		IP:           d.IP,
		Timestamp:    d.Time,
		Method:       d.Method,
		URL:          d.URL,
		StatusCode:   d.StatusCode,
		Country:      d.Country,
		Date:         d.Date,
		Hour:         d.Hour,
		UserAgent:    d.UserAgent,
		Referer:      d.Referer,
		ResponseSize: d.ResponseSize,
		Browser:      d.Browser,
		OS:           d.OS,
		DeviceType:   d.DeviceType,
	}
}
