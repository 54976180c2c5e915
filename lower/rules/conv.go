package rules

import (
	"github.com/gpukit/hlo-lower/gpurt"
	"github.com/gpukit/hlo-lower/hlo"
	"github.com/gpukit/hlo-lower/lower"
)

// RegisterConvolution contributes the convolution lowering to the gpurt
// DNN op.
func RegisterConvolution(reg *lower.Registry, conv *lower.TypeConverter) {
	reg.Add(streamedPattern("lower-convolution", hlo.KindConvolution, gpurt.KindDnnConv))
}
