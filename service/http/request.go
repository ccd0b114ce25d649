package http

import "encoding/json"

type request struct {
	requestID string
	method    string
	url       string
	body      []byte
	clientIP  string
	path      string
}

type response struct {
	Status int         `json:"status"`
	Msg    string      `json:"msg,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// rawResponse is a response as the client decodes it.
type rawResponse struct {
	Status int             `json:"status"`
	Msg    string          `json:"msg"`
	Data   json.RawMessage `json:"data"`
}

// hello answers the handshake.
type hello struct {
	Name string `json:"name"`
	Pid  int    `json:"pid"`
}
