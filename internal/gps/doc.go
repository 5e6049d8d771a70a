package gps

// Package gps provides a minimal NMEA reader for USB serial GNSS receivers.
//
// It is intentionally small and geared toward the clock's needs:
// - Parse RMC for UTC time/date, lat/lon, ground speed and course
// - Parse GGA for altitude and satellite count
// - Provide a snapshot the time discipline and the display consume
