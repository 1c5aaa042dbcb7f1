// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Error — текст ошибки (опционально, при неуспехе).
// Поле Data — данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// Сообщения, которые видит клиент. Фронтенд проверяет их дословно.
const (
	MsgSignupSuccess       = "Sign Up Successful."
	MsgLoginSuccess        = "Login Successful."
	MsgBadInputs           = "Please cross-check your inputs..."
	MsgInvalidRecaptcha    = "Invalid recaptcha."
	MsgUserExists          = "User already exists..."
	MsgInvalidCredentials  = "Invalid credentials."
	MsgAuthFailed          = "Authentication failed!"
	MsgUserNotFound        = "User not found in the db."
	MsgUserNotFoundRetry   = "User not found in the db, try again later..."
	MsgLibraryNotFound     = "Image Library not found in the db, try again later..."
	MsgNotSubscribed       = "User is not subscribed for Pro plan."
	MsgSubscriptionExpired = "User subscription expired, please renew your subscription."
	MsgNoSubscription      = "User has no subscription."
	MsgUploaded            = "Uploaded!"
	MsgSubCreated          = "Subscription created successfully!"
	MsgSubUpdated          = "Subscription updated successfully!"
	MsgSubResumed          = "Subscription resumed successfully!"
	MsgSubCancelled        = "Subscription cancelled successfully!"
	MsgUserFetched         = "User details fetched successfully!"
	MsgCustomerFetched     = "Customer fetched successfully!"
	MsgSubFetched          = "Subscription fetched successfully!"
	MsgRouteNotFound       = "Could not find this route."
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}
