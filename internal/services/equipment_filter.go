package services

import (
	"errors"
	"strconv"

	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/models"
)

// Query parameter keys accepted by the equipment search endpoint.
const (
	filterKeyName              = "name"
	filterKeyAvailableQuantity = "availablequantity"
	filterKeyCondition         = "condition"
)

// Sentinel values callers send to mean "no filter".
const (
	sentinelAll       = "All"
	sentinelUndefined = "undefined"
)

// ErrInvalidAvailabilityBound is returned when the availablequantity parameter
// survives sanitization but does not parse as an integer.
var ErrInvalidAvailabilityBound = errors.New("availablequantity must be an integer")

// ParseEquipmentFilter turns raw query parameters into a typed filter.
//
// Sanitization rules:
//   - name: empty string means absent
//   - condition: "All", "undefined" and empty string mean absent
//   - availablequantity: "undefined" and empty string mean absent; anything
//     else must parse as an integer (upper bound of the [0, n] range)
//
// The input map is never mutated; unknown keys are ignored.
func ParseEquipmentFilter(params map[string]string) (models.EquipmentFilter, error) {
	var filter models.EquipmentFilter

	if v, ok := params[filterKeyName]; ok && v != "" {
		name := v
		filter.Name = &name
	}

	if v, ok := params[filterKeyCondition]; ok && v != "" && v != sentinelAll && v != sentinelUndefined {
		condition := v
		filter.Condition = &condition
	}

	if v, ok := params[filterKeyAvailableQuantity]; ok && v != "" && v != sentinelUndefined {
		max, err := strconv.Atoi(v)
		if err != nil {
			return models.EquipmentFilter{}, ErrInvalidAvailabilityBound
		}
		filter.MaxAvailable = &max
	}

	return filter, nil
}
