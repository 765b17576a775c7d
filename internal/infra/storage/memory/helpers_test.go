package memory

import "github.com/m04kA/SMC-ClinicBooking/pkg/types"

func domainTime(s string) types.TimeString {
	return types.MustTimeString(s)
}
