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
package models

import (
	"time"
)

// AnalysisRun is one finished analysis of a log kind
type AnalysisRun struct {
	ID              uint   `gorm:"primaryKey"`
	Kind            string `gorm:"not null;index"`
	Total           int    `gorm:"not null"`
	UniqueIPs       int
	FilesFound      int
	FilesProcessed  int
	FilesFailed     int
	LinesRead       int64
	Accepted        int64
	Unparsed        int64
	NotSuccessful   int64
	FilteredSelfIP  int64
	FilteredCountry int64
	CreatedAt       time.Time

	Dimensions []DimensionCount    `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
	Requests   []SuccessfulRequest `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

func (AnalysisRun) TableName() string {
	return "analysis_runs"
}

// DimensionCount is one key of one count table of a run
type DimensionCount struct {
	ID        uint   `gorm:"primaryKey"`
	RunID     uint   `gorm:"not null;index:idx_dimension_run,priority:1"`
	Dimension string `gorm:"not null;index:idx_dimension_run,priority:2"`
	Key       string `gorm:"not null"`
	Count     int    `gorm:"not null"`
}

func (DimensionCount) TableName() string {
	return "dimension_counts"
}
