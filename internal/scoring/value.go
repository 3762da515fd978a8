package scoring

import "math"

type valueSegment struct {
	fromScore, toScore float64
	fromValue, toValue float64
}

// Score → INR bands used for ad-platform value bidding.
var valueSegments = []valueSegment{
	{0, 30, 0, 500},
	{30, 60, 500, 3000},
	{60, 81, 3000, 7000},
	{81, 100, 7000, 10000},
}

// ConversionValue interpolates linearly inside each band, so the curve is
// continuous at 30, 60 and 81.
func ConversionValue(score int) int {
	s := float64(clamp(score))
	for _, seg := range valueSegments {
		if s <= seg.toScore {
			ratio := (s - seg.fromScore) / (seg.toScore - seg.fromScore)
			return int(math.Round(seg.fromValue + ratio*(seg.toValue-seg.fromValue)))
		}
	}
	return 10000
}
