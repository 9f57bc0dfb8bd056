package main

import "errors"

// Planning failures are one of four kinds. Callers match with errors.Is;
// every failure aborts the run, there are no partial plans.
var (
	errInvalidCIDR           = errors.New("invalid CIDR")
	errCapacityUnsatisfiable = errors.New("capacity unsatisfiable")
	errSearchExhausted       = errors.New("search exhausted")
	errSubnetOverflow        = errors.New("subnet overflow")
)

func planErrorKind(err error) string {
	switch {
	case errors.Is(err, errInvalidCIDR):
		return "InvalidCIDR"
	case errors.Is(err, errCapacityUnsatisfiable):
		return "CapacityUnsatisfiable"
	case errors.Is(err, errSearchExhausted):
		return "SearchExhausted"
	case errors.Is(err, errSubnetOverflow):
		return "SubnetOverflow"
	}
	return ""
}
