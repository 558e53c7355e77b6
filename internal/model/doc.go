// Package model defines the depth-aware object detector.
//
// The detector follows the YOLOv8 layout at half the channel width of the
// nano model:
//
//	input [N, 3, H, W]
//	  backbone: ConvModule/C2f stages down to stride 32, then SPPF
//	  neck:     top-down (upsample + concat) and bottom-up (strided conv + concat) fusion
//	  heads:    DetectionHead at strides 8, 16 and 32
//
// Each head map has 4*RegMax box-distribution channels, NumClasses class
// channels and one channel for the depth of the box centre. Decoding these
// maps into boxes is left to the caller.
//
// Example:
//
//	backend := cpu.New()
//	det, err := model.New(model.DefaultConfig(), backend)
//	if err != nil {
//	    return err
//	}
//	outputs, err := det.Predict(ctx, input) // three HeadOutput values
//
// The graph is described once as a list of nodes. Forward, Predict,
// InferShapes and Summary all walk the same list, so static shape
// inference always agrees with execution.
package model
