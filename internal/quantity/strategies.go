package quantity

// fieldSet lists base-quantity field names in priority order.
type fieldSet struct {
	area   []string
	volume []string
}

var genericFields = fieldSet{
	area:   []string{"NetArea", "GrossArea", "Area"},
	volume: []string{"NetVolume", "GrossVolume", "Volume"},
}

// quantityFields holds the recognized base quantities per category. Generic
// fields are tried after these for every type.
var quantityFields = map[ElementType]fieldSet{
	Wall: {
		area:   []string{"NetSideArea", "GrossSideArea"},
		volume: []string{"NetVolume", "GrossVolume"},
	},
	CurtainWall: {
		area: []string{"NetSideArea", "GrossSideArea"},
	},
	Space: {
		area:   []string{"NetFloorArea", "GrossFloorArea"},
		volume: []string{"NetVolume", "GrossVolume"},
	},
	Column: {
		area:   []string{"NetSurfaceArea", "GrossSurfaceArea", "OuterSurfaceArea"},
		volume: []string{"NetVolume", "GrossVolume"},
	},
	Beam: {
		area:   []string{"NetSurfaceArea", "GrossSurfaceArea", "OuterSurfaceArea"},
		volume: []string{"NetVolume", "GrossVolume"},
	},
	Member: {
		area:   []string{"NetSurfaceArea", "GrossSurfaceArea", "OuterSurfaceArea"},
		volume: []string{"NetVolume", "GrossVolume"},
	},
}

func fromQuantitySets(rec RawElementRecord, t ElementType) estimate {
	fields := quantityFields[t]
	var est estimate
	if v, ok := rec.PropertySets.lookup(true, append(fields.area, genericFields.area...)...); ok {
		est.area = ptr(v)
	}
	if v, ok := rec.PropertySets.lookup(true, append(fields.volume, genericFields.volume...)...); ok {
		est.volume = ptr(v)
	}
	return est
}

// dimensionKeys lists the property fallbacks for each raw dimension.
var dimensionKeys = map[string][]string{
	"length":        {"Length"},
	"height":        {"Height", "Unconnected Height", "UnconnectedHeight"},
	"width":         {"Width", "Thickness"},
	"depth":         {"Depth", "Thickness"},
	"overallWidth":  {"OverallWidth", "Width"},
	"overallHeight": {"OverallHeight", "Height"},
}

// dimension reads a raw dimension from parser geometry first, then from any
// set. Only positive values count.
func dimension(rec RawElementRecord, name string) (float64, bool) {
	if g := rec.Geometry; g != nil {
		var v *float64
		switch name {
		case "length":
			v = g.Length
		case "height", "overallHeight":
			v = g.Height
		case "width", "overallWidth":
			v = g.Width
		}
		if v != nil && *v > 0 {
			return *v, true
		}
	}
	if v, ok := rec.PropertySets.lookup(true, dimensionKeys[name]...); ok && v > 0 {
		return v, true
	}
	if v, ok := rec.PropertySets.lookup(false, dimensionKeys[name]...); ok && v > 0 {
		return v, true
	}
	return 0, false
}

// product multiplies named dimensions, failing if any is missing.
func product(rec RawElementRecord, names ...string) (float64, bool) {
	result := 1.0
	for _, name := range names {
		v, ok := dimension(rec, name)
		if !ok {
			return 0, false
		}
		result *= v
	}
	return result, true
}

func fromDimensions(rec RawElementRecord, t ElementType) estimate {
	var est estimate
	switch t {
	case Wall, CurtainWall:
		if area, ok := product(rec, "length", "height"); ok {
			est.area = ptr(area)
			if w, ok := dimension(rec, "width"); ok {
				est.volume = ptr(area * w)
			}
		}
	case Slab, Roof, Covering, Plate, Footing:
		if area, ok := product(rec, "length", "width"); ok {
			est.area = ptr(area)
			if d, ok := dimension(rec, "depth"); ok {
				est.volume = ptr(area * d)
			}
		}
	case Door, Window:
		if area, ok := product(rec, "overallWidth", "overallHeight"); ok {
			est.area = ptr(area)
		}
	case Space:
		if area, ok := product(rec, "length", "width"); ok {
			est.area = ptr(area)
			if h, ok := dimension(rec, "height"); ok {
				est.volume = ptr(area * h)
			}
		}
	}
	return est
}

func fromGeometry(rec RawElementRecord, _ ElementType) estimate {
	var est estimate
	g := rec.Geometry
	if g == nil {
		return est
	}
	if g.Area != nil && *g.Area > 0 {
		est.area = ptr(*g.Area)
	}
	if g.Volume != nil && *g.Volume > 0 {
		est.volume = ptr(*g.Volume)
	}
	return est
}

func fromPropertyScan(rec RawElementRecord, _ ElementType) estimate {
	var est estimate
	if v, ok := rec.PropertySets.scan("area"); ok && v >= 0 {
		est.area = ptr(v)
	}
	if v, ok := rec.PropertySets.scan("volume"); ok && v >= 0 {
		est.volume = ptr(v)
	}
	return est
}
