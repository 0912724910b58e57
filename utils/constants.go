// File: utils/constants.go
package utils

// AvailabilityCachePrefix is the prefix used for Redis availability cache keys.
const AvailabilityCachePrefix = "availability:"

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"
