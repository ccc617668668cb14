package version

// Version is overridden at build time with -ldflags "-X geostats/internal/version.Version=..."
var Version = "dev"
