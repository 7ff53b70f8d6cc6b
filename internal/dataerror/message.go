package dataerror

import "net/http"

var messages = map[Kind]string{
	KindRequestTimeout:  "The request timed out.",
	KindTooManyRequests: "Your quota seems to be exceeded.",
	KindNoInternet:      "Couldn't reach server, please check your internet connection.",
	KindServer:          "Oops, something went wrong.",
	KindSerialization:   "Couldn't parse data.",
	KindRemoteUnknown:   "Oops, something went wrong.",
	KindDiskFull:        "Oops, it seems like your disk is full.",
	KindLocalUnknown:    "Oops, something went wrong.",
}

var statuses = map[Kind]int{
	KindRequestTimeout:  http.StatusGatewayTimeout,
	KindTooManyRequests: http.StatusTooManyRequests,
	KindNoInternet:      http.StatusBadGateway,
	KindServer:          http.StatusBadGateway,
	KindSerialization:   http.StatusBadGateway,
	KindRemoteUnknown:   http.StatusInternalServerError,
	KindDiskFull:        http.StatusInsufficientStorage,
	KindLocalUnknown:    http.StatusInternalServerError,
}

// Message returns the user-facing text for an error.
// Errors outside the data error set get the generic text.
func Message(err error) string {
	kind, _ := KindOf(err)
	return messages[kind]
}

// HTTPStatus returns the status this service answers with when relaying err.
func HTTPStatus(err error) int {
	kind, _ := KindOf(err)
	return statuses[kind]
}
