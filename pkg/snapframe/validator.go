// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package snapframe

import (
	"fmt"
	"math"
)

// AnomalyType represents different types of frame anomalies
type AnomalyType int

const (
	AnomalyBatteryRange AnomalyType = iota
	AnomalyBatteryField
	AnomalyBatteryOrder
	AnomalyRepeatedGroup
	AnomalyDuplicateField
	AnomalyNonFinite
	AnomalyEmptyGroup
)

var anomalyNames = map[AnomalyType]string{
	AnomalyBatteryRange:   "BATTERY_RANGE",
	AnomalyBatteryField:   "BATTERY_FIELD",
	AnomalyBatteryOrder:   "BATTERY_ORDER",
	AnomalyRepeatedGroup:  "REPEATED_GROUP",
	AnomalyDuplicateField: "DUPLICATE_FIELD",
	AnomalyNonFinite:      "NON_FINITE",
	AnomalyEmptyGroup:     "EMPTY_GROUP",
}

// String returns the anomaly name
func (a AnomalyType) String() string {
	if name, ok := anomalyNames[a]; ok {
		return name
	}
	return fmt.Sprintf("ANOMALY_%d", int(a))
}

// ValidationError describes a frame that decoded but breaks an expectation
// the encoder always upholds.
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateFrame checks a decoded frame for anomalies.
// Returns a slice of validation errors (empty if the frame is clean).
func ValidateFrame(f *Frame) []ValidationError {
	errors := []ValidationError{}
	seenGroups := make(map[uint16]bool)
	seenFields := make(map[uint8]bool)

	for i := range f.Groups {
		g := &f.Groups[i]

		if seenGroups[g.ID] {
			errors = append(errors, ValidationError{
				Type:    AnomalyRepeatedGroup,
				Message: fmt.Sprintf("Group 0x%04X appears more than once", g.ID),
				Details: map[string]interface{}{"group": g.ID},
			})
		}
		seenGroups[g.ID] = true

		if len(g.Fields) == 0 {
			errors = append(errors, ValidationError{
				Type:    AnomalyEmptyGroup,
				Message: fmt.Sprintf("Group 0x%04X carries no fields", g.ID),
				Details: map[string]interface{}{"group": g.ID},
			})
		}

		if g.IsBattery() {
			if i != 0 {
				errors = append(errors, ValidationError{
					Type:    AnomalyBatteryOrder,
					Message: fmt.Sprintf("Battery group at position %d (expected first)", i),
					Details: map[string]interface{}{"position": i},
				})
			}
			errors = append(errors, validateBatteryGroup(g)...)
			continue
		}

		for _, v := range g.Fields {
			if seenFields[v.id] {
				errors = append(errors, ValidationError{
					Type:    AnomalyDuplicateField,
					Message: fmt.Sprintf("Field %d appears more than once", v.id),
					Details: map[string]interface{}{"field": v.id},
				})
			}
			seenFields[v.id] = true

			if v.kind.float() {
				if fv := v.Float(); math.IsNaN(fv) || math.IsInf(fv, 0) {
					errors = append(errors, ValidationError{
						Type:    AnomalyNonFinite,
						Message: fmt.Sprintf("Field %d is not finite (%v)", v.id, fv),
						Details: map[string]interface{}{"field": v.id, "value": fv},
					})
				}
			}
		}
	}

	return errors
}

// validateBatteryGroup validates the children of the battery group
func validateBatteryGroup(g *Group) []ValidationError {
	errors := []ValidationError{}

	for _, v := range g.Fields {
		switch {
		case v.id == BatteryLevelChild && v.kind == KindUint8:
			if v.Uint() > MaxBatteryLevel {
				errors = append(errors, ValidationError{
					Type:    AnomalyBatteryRange,
					Message: fmt.Sprintf("Battery level %d%% out of range (max %d)", v.Uint(), MaxBatteryLevel),
					Details: map[string]interface{}{"level": v.Uint(), "max": MaxBatteryLevel},
				})
			}
		case v.id == BatteryChargingChild && v.kind == KindBool:
		default:
			errors = append(errors, ValidationError{
				Type:    AnomalyBatteryField,
				Message: fmt.Sprintf("Unexpected battery child %d of kind %s", v.id, v.kind),
				Details: map[string]interface{}{"child": v.id, "kind": v.kind.String()},
			})
		}
	}

	return errors
}
