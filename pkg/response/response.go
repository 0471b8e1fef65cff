package response

// JSONResponse is the plain envelope for non-engine endpoints. Engine
// endpoints return the AnalysisResult envelope directly.
type JSONResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func Success(message string, data any) JSONResponse {
	return JSONResponse{
		Code:    "OK",
		Message: message,
		Data:    data,
	}
}

func Error(code, message string, data any) JSONResponse {
	return JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	}
}
