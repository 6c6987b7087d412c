package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Object is a decoded API resource (intent, token, source) exactly as the
// backend returned it.
type Object map[string]any

func (o Object) String(key string) string {
	if o == nil {
		return ""
	}
	value, ok := o[key]
	if !ok || value == nil {
		return ""
	}
	if typed, ok := value.(string); ok {
		return typed
	}
	return fmt.Sprint(value)
}

func (o Object) ID() string {
	return o.String("id")
}

func (o Object) Status() string {
	return o.String("status")
}

func (o Object) Kind() string {
	return o.String("object")
}

// APIError is the uniform public error object: {message, type?, ...}.
type APIError struct {
	Message     string         `json:"message"`
	Type        string         `json:"type,omitempty"`
	Code        string         `json:"code,omitempty"`
	DeclineCode string         `json:"decline_code,omitempty"`
	Param       string         `json:"param,omitempty"`
	Extra       map[string]any `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Type == "" {
		return e.Message
	}
	return e.Type + ": " + e.Message
}

func (e *APIError) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Extra)+5)
	for key, value := range e.Extra {
		out[key] = value
	}
	out["message"] = e.Message
	for key, value := range map[string]string{
		"type":         e.Type,
		"code":         e.Code,
		"decline_code": e.DeclineCode,
		"param":        e.Param,
	} {
		if value != "" {
			out[key] = value
		}
	}
	return json.Marshal(out)
}

func apiErrorFromBody(raw any) *APIError {
	switch typed := raw.(type) {
	case nil:
		return nil
	case string:
		return &APIError{Message: typed}
	case map[string]any:
		out := &APIError{Extra: map[string]any{}}
		for key, value := range typed {
			text, _ := value.(string)
			switch key {
			case "message":
				out.Message = text
			case "type":
				out.Type = text
			case "code":
				out.Code = text
			case "decline_code":
				out.DeclineCode = text
			case "param":
				out.Param = text
			default:
				out.Extra[key] = value
			}
		}
		if len(out.Extra) == 0 {
			out.Extra = nil
		}
		if strings.TrimSpace(out.Message) == "" {
			out.Message = "An unknown error occurred"
		}
		return out
	default:
		return &APIError{Message: fmt.Sprint(typed)}
	}
}

// Result is the discriminated union every public operation resolves to.
// Exactly one of Error or a success field is populated.
type Result struct {
	Error         *APIError
	SetupIntent   Object
	PaymentIntent Object
	Token         Object
	Source        Object
}

func ErrorResult(err error) Result {
	return Result{Error: ToAPIError(err)}
}

func (r Result) Failed() bool {
	return r.Error != nil
}

func (r Result) MarshalJSON() ([]byte, error) {
	switch {
	case r.Error != nil:
		return json.Marshal(map[string]any{"error": r.Error})
	case r.SetupIntent != nil:
		return json.Marshal(map[string]any{"error": nil, "setupIntent": r.SetupIntent})
	case r.PaymentIntent != nil:
		return json.Marshal(map[string]any{"paymentIntent": r.PaymentIntent})
	case r.Token != nil:
		return json.Marshal(map[string]any{"token": r.Token})
	case r.Source != nil:
		return json.Marshal(map[string]any{"source": r.Source})
	default:
		return []byte("{}"), nil
	}
}
