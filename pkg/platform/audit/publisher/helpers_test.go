package publisher

import "time"

var testTime = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
