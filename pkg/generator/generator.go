package generator

// Generator produces one payload per call. Implementations are shared by
// every emission worker and must be safe for concurrent use.
type Generator interface {
	Generate() string
}

type Func func() string

func (f Func) Generate() string {
	return f()
}
