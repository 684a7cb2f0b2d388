package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
)

const iconSize = 44

var (
	iconHidden      []byte
	iconLive        []byte
	iconLiveActive  []byte
	iconMuted       []byte
	iconMutedActive []byte
)

func init() {
	white := color.RGBA{R: 230, G: 230, B: 230, A: 255}
	red := color.RGBA{R: 255, G: 59, B: 48, A: 255}
	iconHidden = encodePNG(image.NewRGBA(image.Rect(0, 0, iconSize, iconSize)))
	iconLive = renderMic(iconSize, white, false)
	iconLiveActive = renderMic(iconSize, red, false)
	iconMuted = renderMic(iconSize, white, true)
	iconMutedActive = renderMic(iconSize, red, true)
}

// IconFor picks the PNG for s. A hidden tray keeps a transparent icon since
// the tray API cannot remove one.
func IconFor(s State) []byte {
	switch {
	case !s.Visible:
		return iconHidden
	case s.Muted && s.Active:
		return iconMutedActive
	case s.Muted:
		return iconMuted
	case s.Active:
		return iconLiveActive
	}
	return iconLive
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic("encodePNG: " + err.Error())
	}
	return buf.Bytes()
}

// renderMic draws a capsule over a stand. Muted adds a diagonal slash.
func renderMic(size int, fg color.RGBA, muted bool) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	s := float64(size)
	cx := s / 2

	capW := s * 0.16 // capsule half width
	capTop, capBot := s*0.12, s*0.58
	arcR := s * 0.27
	arcCY := s * 0.44
	stroke := s * 0.06

	for y := range size {
		for x := range size {
			fx, fy := float64(x)+0.5, float64(y)+0.5
			dx := math.Abs(fx - cx)

			// Capsule: rectangle with round ends
			inCapsule := false
			switch {
			case fy < capTop+capW:
				inCapsule = math.Hypot(dx, fy-(capTop+capW)) <= capW
			case fy > capBot-capW:
				inCapsule = math.Hypot(dx, fy-(capBot-capW)) <= capW
			default:
				inCapsule = dx <= capW
			}

			// Lower half arc around the capsule
			d := math.Hypot(fx-cx, fy-arcCY)
			inArc := fy >= arcCY && math.Abs(d-arcR) <= stroke/2

			// Stand and base
			inStem := dx <= stroke/2 && fy >= arcCY+arcR && fy <= s*0.86
			inBase := dx <= s*0.18 && math.Abs(fy-s*0.86) <= stroke/2

			if inCapsule || inArc || inStem || inBase {
				img.Set(x, y, fg)
			}

			if muted && math.Abs((fx-fy))/math.Sqrt2 <= stroke*0.6 && fx > s*0.12 && fx < s*0.88 {
				img.Set(x, y, fg)
			}
		}
	}
	return encodePNG(img)
}
