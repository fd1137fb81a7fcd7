package session

// Decision — вердикт охраны маршрута по текущему срезу сессии.
type Decision int

const (
	// Wait: сессия ещё восстанавливается, показывать ничего нельзя.
	Wait Decision = iota
	// Allow: доступ разрешён.
	Allow
	// RedirectLogin: пользователь не вошёл, отправить на страницу входа.
	RedirectLogin
	// RedirectDashboard: роль не подходит, отправить на родной дашборд.
	RedirectDashboard
)

func (d Decision) String() string {
	switch d {
	case Wait:
		return "wait"
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectDashboard:
		return "redirect_dashboard"
	default:
		return "unknown"
	}
}

// Decide — чистая функция охраны: по срезу сессии и требуемой роли
// выдаёт вердикт. Пока сессия не определилась или идёт запрос,
// меняющий её, всегда Wait — ни одного преждевременного редиректа
// и ни одного Allow по состоянию, которое вот-вот сменится.
func Decide(snap Snapshot, required Role) Decision {
	if snap.Loading {
		return Wait
	}
	switch snap.State {
	case Uninitialized, Checking:
		return Wait
	case Anonymous:
		return RedirectLogin
	case Authenticated:
		if !snap.IsAuthenticated() {
			return RedirectLogin
		}
		if required != "" && Role(snap.User.Role) != required {
			return RedirectDashboard
		}
		return Allow
	default:
		return Wait
	}
}

// DashboardPath — родной маршрут роли после входа.
func DashboardPath(role Role) string {
	if role == RoleAdmin {
		return "/admin/dashboard"
	}
	return "/employee/dashboard"
}
