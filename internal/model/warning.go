package model

// Warning мягкое предупреждение протокола назначения. Предупреждения
// собираются в набор и не являются ошибками: инструктор может провести
// назначение принудительно, и тогда набор возвращается вызывающему
// как отчёт о том, что именно было проигнорировано.
type Warning string

const (
	WarningWindowClosed  Warning = "window_closed"
	WarningDropped       Warning = "dropped"
	WarningCheckedIn     Warning = "already_checked_in"
	WarningWrongSlotType Warning = "wrong_slot_type"
	WarningNoSeats       Warning = "not_enough_seats"
)

// Message человекочитаемое описание предупреждения
func (w Warning) Message() string {
	switch w {
	case WarningWindowClosed:
		return "registration window is closed"
	case WarningDropped:
		return "course user has dropped the course"
	case WarningCheckedIn:
		return "registration is already checked in"
	case WarningWrongSlotType:
		return "exam slot type does not match user's slot type"
	case WarningNoSeats:
		return "not enough seats in the requested slot"
	}
	return string(w)
}

// Warnings набор предупреждений без дубликатов
type Warnings []Warning

// Add добавляет предупреждение, если его ещё нет в наборе
func (ws *Warnings) Add(w Warning) {
	if !ws.Contains(w) {
		*ws = append(*ws, w)
	}
}

// Contains проверяет наличие предупреждения в наборе
func (ws Warnings) Contains(w Warning) bool {
	for _, existing := range ws {
		if existing == w {
			return true
		}
	}
	return false
}
