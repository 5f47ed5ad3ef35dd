package domain

// Notification - широковещательное уведомление участникам сессии
// Доставка best-effort: сбой логируется и никогда не влияет на запись
type Notification struct {
	Event string            `json:"event"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}
