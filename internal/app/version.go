package app

const ServiceName = "sistema-academico"

// Set via -ldflags during build:
//
//	go build -ldflags="-X 'github.com/Natalia-54/sistema-academico-jfk/internal/app.Version=1.0.0'"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)
