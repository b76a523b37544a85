package imagetosvg

// Simplify keeps every factor-th vertex of c. Contours too short for that stride are
// cut into about ten segments instead, and if even that leaves fewer than 3 vertices
// c is returned as is.
func Simplify(c Contour, factor int) Contour {
	factor = max(1, factor)
	var out Contour
	if len(c) >= 3*factor {
		out = stride(c, factor)
	} else {
		out = stride(c, max(1, len(c)/10))
	}
	if len(out) < 3 {
		return c
	}
	return out
}

func stride(c Contour, step int) Contour {
	out := make(Contour, 0, (len(c)+step-1)/step)
	for i := 0; i < len(c); i += step {
		out = append(out, c[i])
	}
	return out
}
