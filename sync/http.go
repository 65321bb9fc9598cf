package sync

import "time"

// HTTPRequestTimeout is the timeout for every request made to the Recruit CRM API.
const HTTPRequestTimeout = 30 * time.Second
