package validation

import (
	"fmt"
	"strconv"

	"icrelay/internal/errors"
)

// maxSnowflakeDigits is the width of the largest uint64
const maxSnowflakeDigits = 20

// ValidateSnowflake checks that id is a decimal 64-bit Discord identifier
func ValidateSnowflake(id, fieldName string) error {
	if id == "" {
		return errors.NewValidationError(fieldName, id, fmt.Sprintf("%s cannot be empty", fieldName))
	}

	if len(id) > maxSnowflakeDigits {
		return errors.NewValidationError(fieldName, id,
			fmt.Sprintf("%s too long (max %d digits)", fieldName, maxSnowflakeDigits))
	}

	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return errors.NewValidationError(fieldName, id, fmt.Sprintf("%s must contain only digits", fieldName))
	}

	return nil
}

// ValidateNumericRange validates numeric values against bounds
func ValidateNumericRange(value int, fieldName string, min, max int) error {
	if value < min {
		return errors.NewValidationError(fieldName, strconv.Itoa(value),
			fmt.Sprintf("%s too small (min %d)", fieldName, min))
	}

	if value > max {
		return errors.NewValidationError(fieldName, strconv.Itoa(value),
			fmt.Sprintf("%s too large (max %d)", fieldName, max))
	}

	return nil
}
