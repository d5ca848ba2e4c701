package util

import (
	"os"
	"strconv"
	"strings"
)

// TimeFormat stores a correctly formatted timestamp
const TimeFormat string = "2006-01-02-T15:04:05-0700"

// FileTimeFormat is used to stamp export file names
const FileTimeFormat string = "20060102_150405"

// Exists returns true if file or directory exists
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// IsDir returns true if argument is a directory
func IsDir(path string) bool {
	file, err := os.Stat(path)
	if err != nil {
		return false
	}
	return file.IsDir()
}

// FormatCoordinate renders a latitude or longitude without trailing zeros
func FormatCoordinate(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// MapURL fills the {lat} and {lon} placeholders of a map link template
func MapURL(template string, lat, lon float64) string {
	return strings.NewReplacer(
		"{lat}", FormatCoordinate(lat),
		"{lon}", FormatCoordinate(lon),
	).Replace(template)
}
