package geo

import "math"

// CellID identifies a hex cell by its axial coordinate (q, r), packed into
// a single int64 so it can be used as a plain map key without a struct.
type CellID int64

func packCell(q, r int32) CellID {
	return CellID(uint64(uint32(q))<<32 | uint64(uint32(r)))
}

func (c CellID) unpack() (q, r int32) {
	u := uint64(c)
	return int32(u >> 32), int32(uint32(u))
}

// HexGrid is a flat-top, axial-coordinate hexagonal tiling anchored at an
// origin point, with a fixed cell edge length in meters. Cells are equal
// area by construction (regular hexagons on a local tangent-plane
// projection), which is accurate enough for the walking-scale radii an
// isochrone operates over; no pack library provides hierarchical hex
// tiling (e.g. H3), so the axial math here is first-party, built on top of
// geo.Point / geo.MetersBetween.
type HexGrid struct {
	Origin       Point
	EdgeMeters   float64
	metersPerLat float64
	metersPerLon float64
}

// NewHexGrid builds a grid anchored at origin with the given cell edge
// length in meters. edgeMeters must be positive.
func NewHexGrid(origin Point, edgeMeters float64) HexGrid {
	latRad := origin.Lat * math.Pi / 180
	return HexGrid{
		Origin:       origin,
		EdgeMeters:   edgeMeters,
		metersPerLat: 111320.0,
		metersPerLon: 111320.0 * math.Cos(latRad),
	}
}

func (h HexGrid) localXY(p Point) (x, y float64) {
	x = (p.Lon - h.Origin.Lon) * h.metersPerLon
	y = (p.Lat - h.Origin.Lat) * h.metersPerLat
	return
}

func (h HexGrid) latLonOf(x, y float64) Point {
	lon := h.Origin.Lon + x/h.metersPerLon
	lat := h.Origin.Lat + y/h.metersPerLat
	return Point{Lat: lat, Lon: lon}
}

// axialToXY converts an axial (q, r) coordinate to flat-top pixel
// coordinates for a hexagon of the given edge length.
func axialToXY(q, r int32, edge float64) (x, y float64) {
	x = edge * 1.5 * float64(q)
	y = edge * math.Sqrt(3) * (float64(r) + float64(q)/2)
	return
}

// xyToAxial converts pixel coordinates back to the nearest axial cell via
// cube rounding.
func xyToAxial(x, y, edge float64) (q, r int32) {
	qf := (2.0 / 3.0 * x) / edge
	rf := (-1.0/3.0*x + math.Sqrt(3)/3.0*y) / edge
	return cubeRound(qf, rf)
}

func cubeRound(qf, rf float64) (int32, int32) {
	xf := qf
	zf := rf
	yf := -xf - zf

	rx := math.Round(xf)
	ry := math.Round(yf)
	rz := math.Round(zf)

	dx := math.Abs(rx - xf)
	dy := math.Abs(ry - yf)
	dz := math.Abs(rz - zf)

	if dx > dy && dx > dz {
		rx = -ry - rz
	} else if dy > dz {
		ry = -rx - rz
	} else {
		rz = -rx - ry
	}
	return int32(rx), int32(rz)
}

// CellID returns the cell containing p.
func (h HexGrid) CellID(p Point) CellID {
	x, y := h.localXY(p)
	q, r := xyToAxial(x, y, h.EdgeMeters)
	return packCell(q, r)
}

// CellCenter returns the lat/lon centroid of a cell.
func (h HexGrid) CellCenter(c CellID) Point {
	q, r := c.unpack()
	x, y := axialToXY(q, r, h.EdgeMeters)
	return h.latLonOf(x, y)
}

// CellCorners returns the six flat-top hexagon vertices of cell c, in
// order, for rendering or polygon-union purposes.
func (h HexGrid) CellCorners(c CellID) [6]Point {
	q, r := c.unpack()
	cx, cy := axialToXY(q, r, h.EdgeMeters)
	var corners [6]Point
	for i := 0; i < 6; i++ {
		angle := math.Pi / 180 * float64(60*i)
		x := cx + h.EdgeMeters*math.Cos(angle)
		y := cy + h.EdgeMeters*math.Sin(angle)
		corners[i] = h.latLonOf(x, y)
	}
	return corners
}

// CellsCovering enumerates every cell whose centroid falls inside the
// polygon's bounding box and retains those whose centroid is inside the
// polygon itself, which is sufficient rasterization fidelity for
// isochrone purposes (cell edge << polygon feature size in the intended
// use, a city-scale reachability query).
func (h HexGrid) CellsCovering(poly Polygon) []CellID {
	bound := poly.Bound()
	corners := []Point{
		{Lat: bound.MinLat, Lon: bound.MinLon},
		{Lat: bound.MinLat, Lon: bound.MaxLon},
		{Lat: bound.MaxLat, Lon: bound.MinLon},
		{Lat: bound.MaxLat, Lon: bound.MaxLon},
	}
	minQ, maxQ := int32(0), int32(0)
	minR, maxR := int32(0), int32(0)
	for i, p := range corners {
		x, y := h.localXY(p)
		q, r := xyToAxial(x, y, h.EdgeMeters)
		if i == 0 || q < minQ {
			minQ = q
		}
		if i == 0 || q > maxQ {
			maxQ = q
		}
		if i == 0 || r < minR {
			minR = r
		}
		if i == 0 || r > maxR {
			maxR = r
		}
	}
	// axial r-range shifts with q for a flat-top layout; pad generously.
	pad := int32(2)
	var out []CellID
	for q := minQ - pad; q <= maxQ+pad; q++ {
		for r := minR - pad; r <= maxR+pad; r++ {
			id := packCell(q, r)
			center := h.CellCenter(id)
			if poly.Contains(center) {
				out = append(out, id)
			}
		}
	}
	return out
}
