package domain

import "strings"

// Crop identifies what is grown on a field.
type Crop string

const (
	CropWheat     Crop = "wheat"
	CropRice      Crop = "rice"
	CropMaize     Crop = "maize"
	CropCotton    Crop = "cotton"
	CropSugarcane Crop = "sugarcane"
	CropVegetable Crop = "vegetable"
	CropOrchard   Crop = "orchard"
	CropFallow    Crop = "fallow"
)

// Crops lists the accepted crop identifiers.
var Crops = []Crop{
	CropWheat, CropRice, CropMaize, CropCotton,
	CropSugarcane, CropVegetable, CropOrchard, CropFallow,
}

// ParseCrop normalises a crop string, accepting a few common aliases.
// Unknown or empty values return ("", false).
func ParseCrop(s string) (Crop, bool) {
	switch Crop(strings.ToLower(strings.TrimSpace(s))) {
	case "paddy":
		return CropRice, true
	case "corn":
		return CropMaize, true
	case "":
		return "", false
	default:
	}
	c := Crop(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Crops {
		if c == known {
			return known, true
		}
	}
	return "", false
}

// Kc returns the crop coefficient used to scale reference
// evapotranspiration into crop water use. Unknown crops fall back to
// the wheat-like default.
func (c Crop) Kc() float64 {
	switch c {
	case CropRice:
		return 1.1
	case CropMaize:
		return 0.9
	case CropCotton:
		return 1.0
	case CropSugarcane:
		return 1.05
	case CropVegetable:
		return 0.85
	case CropOrchard:
		return 0.75
	case CropFallow:
		return 0.3
	default:
		return 0.7
	}
}
