package geom

// Clip splits poly along plane. Points behind the plane go to back, all
// others to front; each edge crossing the plane contributes its intersection
// point to both sides. Distances are compared after rounding to
// ClassifyPlaces decimals and cut points are snapped to CutPlaces decimals.
//
// A polygon entirely in front comes back unchanged as front with an empty
// back, and the other way round.
func Clip(poly Polygon, plane Plane) (back, front Polygon) {
	for i, a := range poly {
		b := poly[(i+1)%len(poly)]
		da := plane.SignedDistance(a)
		db := plane.SignedDistance(b)
		aBehind := Round(da, ClassifyPlaces) < 0
		bBehind := Round(db, ClassifyPlaces) < 0

		if aBehind {
			back = append(back, a)
		} else {
			front = append(front, a)
		}

		if aBehind != bBehind && da != db {
			cut := RoundVec(Lerp(a, b, da/(da-db)), CutPlaces)
			back = append(back, cut)
			front = append(front, cut)
		}
	}
	return back, front
}
