package constants

import "os"

func GetOutDir() string {
	path := os.Getenv("OUT_PATH")
	if path != "" {
		return path
	}
	return "./out"
}

func GetMetadataEndpoint() string {
	endpoint := os.Getenv("METADATA_ENDPOINT")
	if endpoint != "" {
		return endpoint
	}
	return "http://localhost:8000"
}

const DefaultMaxChords = 3

const DefaultTrimBelow = 0.25

// timespans shorter than this get pruned by the reduction pipeline
const DefaultShortDuration = 0.5
