package algorithms

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cast"

	"github.com/kbukum/graphx/dag"
	"github.com/kbukum/graphx/ops"
	"github.com/kbukum/graphx/record"
	"github.com/kbukum/graphx/stream"
)

// EarthRadiusKm is the radius used for great-circle distances.
const EarthRadiusKm = 6365.0

// TimeLayout is the layout of enter_time and leave_time, for example
// 20171020T112238.723000. The fractional seconds are optional.
const TimeLayout = "20060102T150405"

// RoadSpeed computes the average speed in km/h on the road graph per
// weekday and hour. times holds {edge_id, enter_time, leave_time} rows and
// lengths holds {edge_id, start, end} rows where start and end are
// [lon, lat] pairs in degrees. The result holds {weekday, hour, speed} rows
// ordered by weekday name, then hour.
func RoadSpeed(g *dag.Graph, times, lengths string) dag.Chain {
	trips := g.Input(times).
		AddSort([]string{ColEdgeID}, false).
		Named("trips")

	return g.Input(lengths).
		AddSort([]string{ColEdgeID}, false).
		AddJoin(trips, []string{ColEdgeID}, ops.Inner).
		AddNamedMap("time_and_distance", timeAndDistance).
		AddSort([]string{ColWeekday, ColHour}, false).
		AddNamedReduce("speed", averageSpeed, []string{ColWeekday, ColHour}).
		Named("road_speed")
}

// timeAndDistance turns one trip on an edge into {weekday, hour,
// time_lapse, distance}. Trips without a positive duration are dropped.
func timeAndDistance(r record.Record) stream.Iterator[record.Record] {
	enter, err := parseTime(r, ColEnterTime)
	if err != nil {
		return fail(err)
	}
	leave, err := parseTime(r, ColLeaveTime)
	if err != nil {
		return fail(err)
	}
	lapse := leave.Sub(enter).Hours()
	if lapse <= 0 {
		return stream.Empty[record.Record]()
	}
	startLon, startLat, err := lonLat(r.Value(ColStart))
	if err != nil {
		return fail(fmt.Errorf("%s: %w", ColStart, err))
	}
	endLon, endLat, err := lonLat(r.Value(ColEnd))
	if err != nil {
		return fail(fmt.Errorf("%s: %w", ColEnd, err))
	}
	return stream.Of(record.New(
		ColWeekday, enter.Weekday().String()[:3],
		ColHour, enter.Hour(),
		ColTimeLapse, lapse,
		ColDistance, Haversine(endLon, endLat, startLon, startLat),
	))
}

func averageSpeed(group stream.Iterator[record.Record]) stream.Iterator[record.Record] {
	rows, err := collect(group)
	if err != nil || len(rows) == 0 {
		return fail(err)
	}
	var distance, hours float64
	for _, row := range rows {
		d, err := row.GetFloat(ColDistance)
		if err != nil {
			return fail(err)
		}
		h, err := row.GetFloat(ColTimeLapse)
		if err != nil {
			return fail(err)
		}
		distance += d
		hours += h
	}
	last := rows[len(rows)-1]
	return stream.Of(record.New(
		ColWeekday, last.Value(ColWeekday),
		ColHour, last.Value(ColHour),
		ColSpeed, distance/hours,
	))
}

// Haversine returns the great-circle distance in kilometres between two
// points given in degrees.
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {
	lon1, lat1 = radians(lon1), radians(lat1)
	lon2, lat2 = radians(lon2), radians(lat2)
	dlat := lat2 - lat1
	dlon := lon2 - lon1
	a := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func parseTime(r record.Record, column string) (time.Time, error) {
	s, err := r.GetString(column)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", column, err)
	}
	return t, nil
}

// lonLat reads a [lon, lat] pair.
func lonLat(v record.Value) (float64, float64, error) {
	var items []any
	switch x := v.(type) {
	case []any:
		items = x
	case []float64:
		for _, f := range x {
			items = append(items, f)
		}
	}
	if len(items) != 2 {
		return 0, 0, fmt.Errorf("expected [lon, lat], got %v", v)
	}
	lon, err := cast.ToFloat64E(items[0])
	if err != nil {
		return 0, 0, err
	}
	lat, err := cast.ToFloat64E(items[1])
	if err != nil {
		return 0, 0, err
	}
	return lon, lat, nil
}
