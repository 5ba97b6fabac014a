package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteTelemetry writes one tick's readings as a single point on the
// "solar" measurement, tagged with the client name. The write is
// non-blocking; points are batched and sent asynchronously.
//
// Fields absent from the map (failed reads that tick) are simply not
// written, so series in InfluxDB carry gaps rather than zeros.
func (c *Client) WriteTelemetry(clientName string, fields map[string]float64, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}
	if len(fields) == 0 {
		return
	}

	values := make(map[string]interface{}, len(fields))
	for name, v := range fields {
		values[name] = v
	}

	point := write.NewPoint(
		"solar",
		map[string]string{
			"client": clientName,
		},
		values,
		timestamp,
	)

	c.writeAPI.WritePoint(point)
}
