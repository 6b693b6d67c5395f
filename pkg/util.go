package mydups

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// isPathUnder checks if childPath is under parentPath
func isPathUnder(childPath, parentPath string) bool {
	childPath = filepath.Clean(childPath)
	parentPath = filepath.Clean(parentPath)

	// If paths are identical, child is not "under" parent
	if childPath == parentPath {
		return false
	}

	parentWithSep := parentPath
	if !strings.HasSuffix(parentWithSep, string(filepath.Separator)) {
		parentWithSep += string(filepath.Separator)
	}
	return strings.HasPrefix(childPath, parentWithSep)
}

// ParseHumanSize parses human-readable size strings (e.g., "2M", "512k", "1G")
func ParseHumanSize(sizeStr string) (int, error) {
	if sizeStr == "" {
		return 0, fmt.Errorf("empty size string")
	}

	sizeStr = strings.ToUpper(strings.TrimSpace(sizeStr))

	// Split into numeric part and suffix
	numEnd := len(sizeStr)
	for i, char := range sizeStr {
		if !(char >= '0' && char <= '9' || char == '.') {
			numEnd = i
			break
		}
	}
	numPart, suffix := sizeStr[:numEnd], strings.TrimSpace(sizeStr[numEnd:])

	if numPart == "" {
		return 0, fmt.Errorf("no numeric part in size string: %s", sizeStr)
	}

	num, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric part in size string %s: %w", sizeStr, err)
	}

	var multiplier int64
	switch suffix {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	case "G", "GB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unknown size suffix: %s", suffix)
	}

	result := int64(num * float64(multiplier))
	if result <= 0 {
		return 0, fmt.Errorf("size must be positive: %s", sizeStr)
	}
	if result > int64(^uint(0)>>1) { // Check for int overflow
		return 0, fmt.Errorf("size too large: %s", sizeStr)
	}

	return int(result), nil
}
