package domain

import "github.com/google/uuid"

type CaretakerProfile struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ShortName   string    `json:"short_name"`
	SessionCode string    `json:"session_code"`
	IsAdmin     bool      `json:"is_admin"`
	PhoneNumber string    `json:"phone_number,omitempty"`
}

// CaretakerRef - атрибуция для отображения, без лишних полей профиля
type CaretakerRef struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ShortName string    `json:"short_name"`
}

const (
	UnknownCaretakerName      = "Unknown"
	UnknownCaretakerShortName = "?"
)

// ResolveCaretaker находит профиль по id
// Если профиль не найден - возвращаем плейсхолдер, это не ошибка
func ResolveCaretaker(profiles []CaretakerProfile, id uuid.UUID) CaretakerRef {
	for _, profile := range profiles {
		if profile.ID == id {
			return CaretakerRef{
				ID:        profile.ID,
				Name:      profile.Name,
				ShortName: profile.ShortName,
			}
		}
	}

	return CaretakerRef{
		ID:        id,
		Name:      UnknownCaretakerName,
		ShortName: UnknownCaretakerShortName,
	}
}
