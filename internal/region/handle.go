package region

// Handle grants write access to fields that are read-only on Region.
// Only the component that owns the traversal should hold one.
type Handle struct {
	r *Region
}

// NewHandle returns a mutation handle for r.
func NewHandle(r *Region) Handle {
	return Handle{r: r}
}

// SetActive overrides the activity classification of the region.
func (h Handle) SetActive(active bool) {
	h.r.isActive = active
}

// Region returns the region the handle mutates.
func (h Handle) Region() *Region {
	return h.r
}
