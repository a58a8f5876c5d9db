package volfog

// Frame is everything the evaluator reads for one image. It is not
// modified while a render is in progress.
type Frame struct {
	Config  FogConfig
	Camera  CameraState
	Volume  *BoxGeometry
	Sun     *DirectionalLight
	Point   *PointLight
	Shadows Occluder
	Noise   NoiseField
	// Time drives noise scrolling, in seconds.
	Time float32
	// Index seeds per-pixel jitter so that it changes between frames.
	Index uint64
}

// MissingResources names the required inputs that are absent. A frame with
// missing resources is passed through without fog.
func (f *Frame) MissingResources() []string {
	var missing []string
	if f.Volume == nil {
		missing = append(missing, "fog volume")
	}
	if f.Sun == nil {
		missing = append(missing, "directional light")
	}
	return missing
}
