package output

import "github.com/marcus/fastly-stats/internal/document"

// dataPointer locates the data point array in a stats response.
const dataPointer = "/data"

// Point is one bucket of a stats response.
type Point struct {
	StartTime int64
	Requests  uint64
}

// StatsPoints extracts data points from a stats response. Missing or
// mistyped start_time and requests fields default to zero; a missing or
// non-array data field yields no points.
func StatsPoints(v document.Value) []Point {
	items := v.Pointer(dataPointer).Array()
	if len(items) == 0 {
		return nil
	}
	points := make([]Point, 0, len(items))
	for _, item := range items {
		points = append(points, Point{
			StartTime: item.Field("start_time").Int(),
			Requests:  item.Field("requests").Uint(),
		})
	}
	return points
}
