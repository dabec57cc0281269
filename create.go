package optics

import "fmt"

// CreateCounter registers a new Counter under name. It fails with
// ErrAlreadyExists if name is already registered.
func (r *Registry) CreateCounter(name string) (*Counter, error) {
	c := newCounter(name)
	if err := r.insert(c.Cell); err != nil {
		return nil, err
	}
	return c, nil
}

// OpenCounter returns the existing Counter registered under name,
// creating one if none exists. It fails with ErrTypeMismatch if name is
// already registered under a different metric type.
func (r *Registry) OpenCounter(name string) (*Counter, error) {
	if cell, ok := r.Get(name); ok {
		c, ok := cell.owner.(*Counter)
		if !ok {
			return nil, fmt.Errorf("%w: %q is a %s", ErrTypeMismatch, name, cell.typ)
		}
		return c, nil
	}
	c, err := r.CreateCounter(name)
	if err == ErrAlreadyExists {
		return r.OpenCounter(name)
	}
	return c, err
}

// CreateGauge registers a new Gauge under name.
func (r *Registry) CreateGauge(name string) (*Gauge, error) {
	g := newGauge(name)
	if err := r.insert(g.Cell); err != nil {
		return nil, err
	}
	return g, nil
}

// OpenGauge returns the existing Gauge registered under name, creating
// one if none exists.
func (r *Registry) OpenGauge(name string) (*Gauge, error) {
	if cell, ok := r.Get(name); ok {
		g, ok := cell.owner.(*Gauge)
		if !ok {
			return nil, fmt.Errorf("%w: %q is a %s", ErrTypeMismatch, name, cell.typ)
		}
		return g, nil
	}
	g, err := r.CreateGauge(name)
	if err == ErrAlreadyExists {
		return r.OpenGauge(name)
	}
	return g, err
}

// CreateDist registers a new reservoir-sampling Dist under name.
func (r *Registry) CreateDist(name string) (*Dist, error) {
	d := newDist(name, r.rng)
	if err := r.insert(d.Cell); err != nil {
		return nil, err
	}
	return d, nil
}

// OpenDist returns the existing Dist registered under name, creating one
// if none exists.
func (r *Registry) OpenDist(name string) (*Dist, error) {
	if cell, ok := r.Get(name); ok {
		d, ok := cell.owner.(*Dist)
		if !ok {
			return nil, fmt.Errorf("%w: %q is a %s", ErrTypeMismatch, name, cell.typ)
		}
		return d, nil
	}
	d, err := r.CreateDist(name)
	if err == ErrAlreadyExists {
		return r.OpenDist(name)
	}
	return d, err
}

// CreateHistogram registers a new Histogram under name with the given
// bucket edges.
func (r *Registry) CreateHistogram(name string, edges []float64) (*Histogram, error) {
	h, err := newHistogram(name, edges)
	if err != nil {
		return nil, err
	}
	if err := r.insert(h.Cell); err != nil {
		return nil, err
	}
	return h, nil
}

// OpenHistogram returns the existing Histogram registered under name,
// creating one with the given edges if none exists. edges is ignored if
// the histogram already exists.
func (r *Registry) OpenHistogram(name string, edges []float64) (*Histogram, error) {
	if cell, ok := r.Get(name); ok {
		h, ok := cell.owner.(*Histogram)
		if !ok {
			return nil, fmt.Errorf("%w: %q is a %s", ErrTypeMismatch, name, cell.typ)
		}
		return h, nil
	}
	h, err := r.CreateHistogram(name, edges)
	if err == ErrAlreadyExists {
		return r.OpenHistogram(name, edges)
	}
	return h, err
}

// CreateQuantile registers a new stochastic Quantile estimator under
// name, targeting quantile q (in (0,1)), starting its estimate at base
// and stepping by delta per observation.
func (r *Registry) CreateQuantile(name string, q, base, delta float64) (*Quantile, error) {
	qt, err := newQuantile(name, q, base, delta, r.rng)
	if err != nil {
		return nil, err
	}
	if err := r.insert(qt.Cell); err != nil {
		return nil, err
	}
	return qt, nil
}

// OpenQuantile returns the existing Quantile registered under name,
// creating one with the given parameters if none exists.
func (r *Registry) OpenQuantile(name string, q, base, delta float64) (*Quantile, error) {
	if cell, ok := r.Get(name); ok {
		qt, ok := cell.owner.(*Quantile)
		if !ok {
			return nil, fmt.Errorf("%w: %q is a %s", ErrTypeMismatch, name, cell.typ)
		}
		return qt, nil
	}
	qt, err := r.CreateQuantile(name, q, base, delta)
	if err == ErrAlreadyExists {
		return r.OpenQuantile(name, q, base, delta)
	}
	return qt, err
}
