package rules

import (
	"github.com/gpukit/hlo-lower/gpurt"
	"github.com/gpukit/hlo-lower/hlo"
	"github.com/gpukit/hlo-lower/lower"
)

// RegisterFft contributes the spectral-transform lowering.
func RegisterFft(reg *lower.Registry, conv *lower.TypeConverter) {
	reg.Add(streamedPattern("lower-fft", hlo.KindFft, gpurt.KindFftExecute))
}
