package internal

// Display dimensions
const (
	ScreenWidth  = 64
	ScreenHeight = 32
)

// Display is the 64 px x 32 px framebuffer, indexed [x][y]
type Display [ScreenWidth][ScreenHeight]bool

// Pixel reports whether the pixel at x, y is lit. Coordinates outside the
// screen are never lit.
func (d *Display) Pixel(x, y int) bool {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return false
	}
	return d[x][y]
}

// Lit returns the number of lit pixels
func (d Display) Lit() int {
	n := 0
	for w := 0; w < ScreenWidth; w++ {
		for h := 0; h < ScreenHeight; h++ {
			if d[w][h] {
				n++
			}
		}
	}
	return n
}

// clear turns every pixel off and reports whether anything was lit
func (d *Display) clear() bool {
	changed := false
	for w := 0; w < ScreenWidth; w++ {
		for h := 0; h < ScreenHeight; h++ {
			if d[w][h] {
				changed = true
				d[w][h] = false
			}
		}
	}
	return changed
}

// xorRow XORs one 8 px sprite row onto row y starting at column x0.
// Columns past the right edge are dropped unless wrap is set.
// It returns whether a lit pixel was turned off and whether any pixel
// changed.
func (d *Display) xorRow(x0, y int, row uint8, wrap bool) (collision, changed bool) {
	for j := 0; j < 8; j++ {
		x := x0 + j
		if x >= ScreenWidth {
			if !wrap {
				break
			}
			x %= ScreenWidth
		}
		if (row>>(7-j))&0x1 == 0 {
			continue
		}
		changed = true
		if d[x][y] {
			d[x][y] = false
			collision = true
		} else {
			d[x][y] = true
		}
	}
	return collision, changed
}
