package geo

import (
	"math"
)

const tileSize = 256.0

type ClusterOptions struct {
	Radius            int  // piksel
	MaxZoom           int
	SpiderfyOnMaxZoom bool
}

func DefaultClusterOptions() ClusterOptions {
	return ClusterOptions{Radius: 50, MaxZoom: 18, SpiderfyOnMaxZoom: true}
}

type SpiderLeg struct {
	MarkerID string  `json:"marker_id"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

type Cluster struct {
	Lat      float64     `json:"lat"`
	Lng      float64     `json:"lng"`
	Count    int         `json:"count"`
	IconSize int         `json:"icon_size"`
	Markers  []Marker    `json:"markers"`
	Legs     []SpiderLeg `json:"legs,omitempty"`
}

// ClusterIconSize: <10 -> 40, <100 -> 50, diğer -> 60
func ClusterIconSize(count int) int {
	switch {
	case count < 10:
		return 40
	case count < 100:
		return 50
	default:
		return 60
	}
}

type point struct{ x, y float64 }

// project Web Mercator piksel koordinatı
func project(lat, lng float64, zoom int) point {
	scale := tileSize * math.Pow(2, float64(zoom))
	siny := math.Sin(lat * math.Pi / 180)
	siny = math.Min(math.Max(siny, -0.9999), 0.9999)
	return point{
		x: scale * (0.5 + lng/360),
		y: scale * (0.5 - math.Log((1+siny)/(1-siny))/(4*math.Pi)),
	}
}

func unproject(p point, zoom int) (lat, lng float64) {
	scale := tileSize * math.Pow(2, float64(zoom))
	lng = (p.x/scale - 0.5) * 360
	n := math.Pi - 2*math.Pi*p.y/scale
	lat = 180 / math.Pi * math.Atan(math.Sinh(n))
	return lat, lng
}

// ClusterMarkers açgözlü kümeleme: her marker, çapa noktası Radius içinde olan ilk kümeye
// katılır. MaxZoom üstünde birleştirme yapılmaz. MaxZoom'da çoklu kümeler spiderfy edilir.
func ClusterMarkers(markers []Marker, zoom int, opts ClusterOptions) []Cluster {
	if opts.Radius <= 0 {
		opts.Radius = DefaultClusterOptions().Radius
	}
	if opts.MaxZoom <= 0 {
		opts.MaxZoom = DefaultClusterOptions().MaxZoom
	}
	if zoom > opts.MaxZoom {
		zoom = opts.MaxZoom
	}
	if zoom < 0 {
		zoom = 0
	}

	type acc struct {
		anchor  point
		markers []Marker
	}
	var groups []*acc
	radius := float64(opts.Radius)

	for _, m := range markers {
		p := project(m.Lat, m.Lng, zoom)
		var target *acc
		for _, g := range groups {
			if math.Hypot(p.x-g.anchor.x, p.y-g.anchor.y) <= radius {
				target = g
				break
			}
		}
		// en yakın zoom'da sadece üst üste binenler birleşir
		if target != nil && zoom >= opts.MaxZoom {
			a := target.anchor
			if math.Hypot(p.x-a.x, p.y-a.y) > 1 {
				target = nil
			}
		}
		if target == nil {
			groups = append(groups, &acc{anchor: p, markers: []Marker{m}})
			continue
		}
		target.markers = append(target.markers, m)
	}

	out := make([]Cluster, 0, len(groups))
	for _, g := range groups {
		var lat, lng float64
		for _, m := range g.markers {
			lat += m.Lat
			lng += m.Lng
		}
		n := float64(len(g.markers))
		c := Cluster{
			Lat:      lat / n,
			Lng:      lng / n,
			Count:    len(g.markers),
			IconSize: ClusterIconSize(len(g.markers)),
			Markers:  g.markers,
		}
		if zoom >= opts.MaxZoom && opts.SpiderfyOnMaxZoom && len(g.markers) > 1 {
			c.Legs = spiderfy(c, zoom)
		}
		out = append(out, c)
	}
	return out
}

// spiderfy marker'ları küme merkezinin etrafına çember üzerinde dağıtır.
func spiderfy(c Cluster, zoom int) []SpiderLeg {
	center := project(c.Lat, c.Lng, zoom)
	n := len(c.Markers)
	// leaflet.markercluster: çevre ~ 25px * (2 + n)
	r := 25.0 * float64(2+n) / (2 * math.Pi)
	legs := make([]SpiderLeg, n)
	for i, m := range c.Markers {
		angle := 2 * math.Pi * float64(i) / float64(n)
		lat, lng := unproject(point{x: center.x + r*math.Cos(angle), y: center.y + r*math.Sin(angle)}, zoom)
		legs[i] = SpiderLeg{MarkerID: m.ID, Lat: lat, Lng: lng}
	}
	return legs
}
