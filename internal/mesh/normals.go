package mesh

import "gonum.org/v1/gonum/spatial/r3"

// computeNormals sets each vertex normal to the normalised sum of the
// unnormalised face normals around it, which weights faces by area.
func computeNormals(m *Mesh) {
	acc := make([]r3.Vec, len(m.Vertices))
	for t := 0; t+2 < len(m.Indices); t += 3 {
		ia, ib, ic := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		pa := m.Vertices[ia].Position
		pb := m.Vertices[ib].Position
		pc := m.Vertices[ic].Position

		// (c-b) × (a-b)
		fn := r3.Cross(r3.Sub(pc, pb), r3.Sub(pa, pb))
		acc[ia] = r3.Add(acc[ia], fn)
		acc[ib] = r3.Add(acc[ib], fn)
		acc[ic] = r3.Add(acc[ic], fn)
	}

	for i := range m.Vertices {
		n := acc[i]
		l := r3.Norm(n)
		if l < 1e-12 {
			m.Vertices[i].Normal = r3.Vec{Z: 1}
			continue
		}
		m.Vertices[i].Normal = r3.Scale(1/l, n)
	}
}
