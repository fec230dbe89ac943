package loaders

import (
	"fmt"
	"strconv"

	"github.com/df07/go-wavefront-tracer/pkg/core"
)

// GetFloatParam extracts a float parameter
func (stmt *Statement) GetFloatParam(name string) (float64, bool, error) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return 0, false, nil
	}
	val, err := strconv.ParseFloat(param.Values[0], 64)
	if err != nil {
		return 0, true, fmt.Errorf("%s %q: %w", stmt.Type, name, err)
	}
	return val, true, nil
}

// GetIntParam extracts an integer parameter
func (stmt *Statement) GetIntParam(name string) (int, bool, error) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return 0, false, nil
	}
	val, err := strconv.Atoi(param.Values[0])
	if err != nil {
		return 0, true, fmt.Errorf("%s %q: %w", stmt.Type, name, err)
	}
	return val, true, nil
}

// GetBoolParam extracts a bool parameter
func (stmt *Statement) GetBoolParam(name string) (bool, bool, error) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return false, false, nil
	}
	val, err := strconv.ParseBool(param.Values[0])
	if err != nil {
		return false, true, fmt.Errorf("%s %q: %w", stmt.Type, name, err)
	}
	return val, true, nil
}

// GetVec3Param extracts an rgb, point3 or vector3 parameter
func (stmt *Statement) GetVec3Param(name string) (core.Vec3, bool, error) {
	param, exists := stmt.Parameters[name]
	if !exists {
		return core.Vec3{}, false, nil
	}
	if len(param.Values) != 3 {
		return core.Vec3{}, true, fmt.Errorf("%s %q: want 3 values, got %d", stmt.Type, name, len(param.Values))
	}
	var v [3]float64
	for i, s := range param.Values {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return core.Vec3{}, true, fmt.Errorf("%s %q: %w", stmt.Type, name, err)
		}
		v[i] = f
	}
	return core.NewVec3(v[0], v[1], v[2]), true, nil
}

// GetStringParam extracts a string parameter
func (stmt *Statement) GetStringParam(name string) (string, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return "", false
	}
	return param.Values[0], true
}

// GetStringsParam extracts every value of a string parameter
func (stmt *Statement) GetStringsParam(name string) ([]string, bool) {
	param, exists := stmt.Parameters[name]
	if !exists {
		return nil, false
	}
	return param.Values, true
}
