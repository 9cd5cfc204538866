package dsp

// Transform is the uniform façade over the three engines: a flattened
// real-valued array goes in, a flattened real-valued array comes out. It
// replaces the original library's class hierarchy of transform variants
// with a single configuration surface, per §9's "inheritance replaced by
// composition" design note: each variant below is a thin wrapper over one
// canonical engine, not a subclass.
type Transform interface {
	// Forward maps a flattened input array to a flattened transformed
	// array.
	Forward(x []float64) ([]float64, error)
	// Reverse maps a flattened transformed array back to a flattened
	// input array.
	Reverse(x []float64) ([]float64, error)
}

// FFTTransform adapts FFTEngine to the Transform façade, using the
// interleaved-spectrum real wrappers.
type FFTTransform struct {
	engine *FFTEngine
}

// NewFFTTransform wraps engine in the Transform façade.
func NewFFTTransform(engine *FFTEngine) *FFTTransform {
	return &FFTTransform{engine: engine}
}

func (t *FFTTransform) Forward(x []float64) ([]float64, error) {
	return t.engine.ForwardReal(x), nil
}

func (t *FFTTransform) Reverse(x []float64) ([]float64, error) {
	return t.engine.InverseReal(x)
}

// MODWTTransform adapts MODWTEngine to the Transform façade at a fixed
// decomposition level, using the flattened row-major layout.
type MODWTTransform struct {
	engine *MODWTEngine
	level  int
}

// NewMODWTTransform wraps engine in the Transform façade at the given
// level.
func NewMODWTTransform(engine *MODWTEngine, level int) *MODWTTransform {
	return &MODWTTransform{engine: engine, level: level}
}

func (t *MODWTTransform) Forward(x []float64) ([]float64, error) {
	return t.engine.ForwardFlat(x, t.level)
}

func (t *MODWTTransform) Reverse(x []float64) ([]float64, error) {
	return t.engine.InverseFlat(x, t.level)
}

// CWTTransform adapts CWTEngine to the Transform façade. CWT requires an
// explicit scale list that the uniform Forward/Reverse signature has no
// room for, so both methods fail with KindUnsupportedOperation; callers
// needing CWT must call CWTEngine's Transform/TransformFFT/... directly.
type CWTTransform struct {
	engine *CWTEngine
}

// NewCWTTransform wraps engine in the Transform façade.
func NewCWTTransform(engine *CWTEngine) *CWTTransform {
	return &CWTTransform{engine: engine}
}

func (t *CWTTransform) Forward(x []float64) ([]float64, error) {
	return nil, newError(KindUnsupportedOperation, "CWTTransform.Forward", "scales", nil, "explicit scales required")
}

func (t *CWTTransform) Reverse(x []float64) ([]float64, error) {
	return nil, newError(KindUnsupportedOperation, "CWTTransform.Reverse", "scales", nil, "explicit scales required")
}
