package bot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/strawberrylab/masterbot/internal/backend"
	"github.com/strawberrylab/masterbot/internal/domain"
	"github.com/strawberrylab/masterbot/internal/infrastructure/logging"
	tele "gopkg.in/telebot.v3"
)

const notAuthorized = "❌ Вы не авторизованы. Введите /login <логин> <пароль>."

// Handlers wires the conversational surface: every multi-step flow parks its
// chat in an fsm state and the next text message finishes it.
type Handlers struct {
	api        *backend.Client
	identities domain.IdentityStore
	logger     logging.Logger
	states     *fsm
	menu       *tele.ReplyMarkup
}

func NewHandlers(api *backend.Client, identities domain.IdentityStore, logger logging.Logger) *Handlers {
	return &Handlers{
		api:        api,
		identities: identities,
		logger:     logger,
		states:     newFSM(),
		menu:       mainMenu(),
	}
}

func (h *Handlers) Register(b *tele.Bot) {
	b.Handle("/start", h.onStart)
	b.Handle("/login", h.onLogin)

	b.Handle(&btnAddDayOff, h.prompt(stateChooseDaysOff,
		"📆 Введите дни выходных (ГГГГ-ММ-ДД через пробел или с новой строки):"))
	b.Handle(&btnRemoveDayOff, h.prompt(stateRemoveDaysOff,
		"📆 Введите даты, которые снова станут рабочими (ГГГГ-ММ-ДД):"))
	b.Handle(&btnSetHoursWeekday, h.prompt(stateSetWorkHours,
		"Введите день недели и часы приёма (например: Понедельник 10:00 14:30):"))
	b.Handle(&btnSetHoursDate, h.prompt(stateSetWorkHoursByDate,
		"Введите дату и часы приёма (например: 2024-12-25 10:00 14:30):"))
	b.Handle(&btnDeleteHoursDate, h.prompt(stateDeleteWorkHoursByDate,
		"Введите дату, на которую нужно удалить часы приёма (ГГГГ-ММ-ДД):"))
	b.Handle(&btnShowSchedule, h.onShowSchedule)

	b.Handle(tele.OnText, h.onText)
}

func (h *Handlers) onStart(c tele.Context) error {
	return c.Send(
		"👋 Привет! Я помогу тебе управлять расписанием.\n\n"+
			"Сначала войдите: /login <логин> <пароль>\n"+
			"Дальше всё делается кнопками меню.",
		h.menu)
}

func (h *Handlers) onLogin(c tele.Context) error {
	args := c.Args()
	if len(args) != 2 {
		return c.Send("Использование: /login <логин> <пароль>")
	}

	ctx := context.Background()
	chatID := c.Chat().ID

	token, err := h.api.Login(ctx, args[0], args[1])
	if err != nil {
		h.logger.Warn(logging.Backend, logging.Login, "login failed",
			map[logging.ExtraKey]any{
				logging.ChatID:       chatID,
				logging.ErrorMessage: err.Error(),
			})
		return c.Send("❌ Не удалось войти. Проверьте логин и пароль.")
	}

	masterID, err := masterIDFromToken(token)
	if err != nil {
		h.logger.Error(logging.Backend, logging.Login, "token carries no usable account id",
			map[logging.ExtraKey]any{logging.ErrorMessage: err.Error()})
		return c.Send("❌ Не удалось войти. Попробуйте позже.")
	}

	err = h.identities.Upsert(ctx, &domain.IdentityRecord{
		MasterID: masterID,
		ChatID:   chatID,
		Token:    token,
	})
	if err != nil {
		h.logger.Error(logging.Database, logging.Login, "failed to store identity",
			map[logging.ExtraKey]any{
				logging.MasterID:     masterID,
				logging.ErrorMessage: err.Error(),
			})
		return c.Send("❌ Не удалось войти. Попробуйте позже.")
	}

	h.logger.Info(logging.Telegram, logging.Login, "master logged in",
		map[logging.ExtraKey]any{
			logging.MasterID: masterID,
			logging.ChatID:   chatID,
		})
	return c.Send("✅ Вы авторизованы. Теперь вам будут приходить уведомления о записях.", h.menu)
}

// prompt starts a multi-step flow: remember the state, ask the question.
func (h *Handlers) prompt(s state, question string) tele.HandlerFunc {
	return func(c tele.Context) error {
		h.states.set(c.Chat().ID, s)
		return c.Send(question)
	}
}

func (h *Handlers) onText(c tele.Context) error {
	chatID := c.Chat().ID

	current := h.states.get(chatID)
	if current == stateIdle {
		return c.Send("Выберите действие в меню ⤵️", h.menu)
	}

	rec, ok, err := h.authorized(c)
	if err != nil {
		return err
	}
	if !ok {
		h.states.clear(chatID)
		return nil
	}

	defer h.states.clear(chatID)

	switch current {
	case stateChooseDaysOff:
		return h.processDaysOff(c, rec, true)
	case stateRemoveDaysOff:
		return h.processDaysOff(c, rec, false)
	case stateSetWorkHours:
		return h.processWorkHoursByWeekday(c, rec)
	case stateSetWorkHoursByDate:
		return h.processWorkHoursByDate(c, rec)
	case stateDeleteWorkHoursByDate:
		return h.processDeleteWorkHours(c, rec)
	default:
		return c.Send("Выберите действие в меню ⤵️", h.menu)
	}
}

// authorized fetches the stored identity for the chat, telling the user to
// log in when there is none. A store failure is not the user's fault and gets
// its own message.
func (h *Handlers) authorized(c tele.Context) (*domain.IdentityRecord, bool, error) {
	rec, err := h.identities.ByChatSession(context.Background(), c.Chat().ID)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return nil, false, c.Send(notAuthorized)
		}
		h.logger.Error(logging.Database, logging.Login, "identity lookup failed",
			map[logging.ExtraKey]any{
				logging.ChatID:       c.Chat().ID,
				logging.ErrorMessage: err.Error(),
			})
		return nil, false, c.Send("❌ Что-то пошло не так. Попробуйте позже.")
	}
	if rec.Token == "" {
		return nil, false, c.Send(notAuthorized)
	}
	return rec, true, nil
}

func (h *Handlers) processDaysOff(c tele.Context, rec *domain.IdentityRecord, isDayOff bool) error {
	valid, invalid := parseDates(c.Text())
	if len(invalid) > 0 {
		return c.Send("⚠️ Неверный формат: " + strings.Join(invalid, ", "))
	}
	if len(valid) == 0 {
		return c.Send("⚠️ Укажите хотя бы одну дату в формате ГГГГ-ММ-ДД.")
	}

	ctx := context.Background()

	var updated []string
	for _, d := range valid {
		date := d.Format(dateLayout)
		if err := h.api.SetDayOff(ctx, rec.Token, date, isDayOff); err != nil {
			h.logger.Warn(logging.Backend, logging.ExternalService, "failed to update day off",
				map[logging.ExtraKey]any{
					logging.MasterID:     rec.MasterID,
					logging.ErrorMessage: err.Error(),
				})
			continue
		}
		updated = append(updated, date)
	}

	if len(updated) == 0 {
		return c.Send("❌ Не удалось обновить выходные.")
	}
	if isDayOff {
		return c.Send("✅ Добавлены выходные:\n"+strings.Join(updated, "\n"), h.menu)
	}
	return c.Send("✅ Выходные удалены:\n"+strings.Join(updated, "\n"), h.menu)
}

func (h *Handlers) processWorkHoursByWeekday(c tele.Context, rec *domain.IdentityRecord) error {
	parts := strings.Fields(c.Text())
	if len(parts) < 3 {
		return c.Send("⚠️ Укажите день недели и два времени: начало и конец приёма. Пример:\nПонедельник 10:00 14:30")
	}

	weekday, ok := weekdays[strings.ToLower(parts[0])]
	if !ok {
		return c.Send("⚠️ Неизвестный день недели: " + parts[0])
	}

	slots, err := parseSlotRange(strings.Join(parts[1:], " "))
	if err != nil {
		return c.Send(err.Error())
	}

	if err := h.api.SetWorkingSlotsByWeekday(context.Background(), rec.Token, weekday, slots); err != nil {
		return c.Send("❌ Не удалось установить часы приёма.")
	}

	return c.Send(fmt.Sprintf("✅ Часы приёма на %s установлены:\n%s — %s",
		strings.ToLower(parts[0]), slots[0], slots[len(slots)-1]), h.menu)
}

func (h *Handlers) processWorkHoursByDate(c tele.Context, rec *domain.IdentityRecord) error {
	parts := strings.Fields(c.Text())
	if len(parts) < 3 {
		return c.Send("⚠️ Укажите дату и два времени. Пример:\n2024-12-25 10:00 14:30")
	}

	date, err := time.Parse(dateLayout, parts[0])
	if err != nil {
		return c.Send("⚠️ Неверный формат даты: " + parts[0])
	}

	slots, err := parseSlotRange(strings.Join(parts[1:], " "))
	if err != nil {
		return c.Send(err.Error())
	}

	if err := h.api.SetWorkingSlotsByDate(context.Background(), rec.Token, date.Format(dateLayout), slots); err != nil {
		return c.Send("❌ Не удалось установить часы приёма.")
	}

	return c.Send(fmt.Sprintf("✅ Часы приёма на %s установлены:\n%s — %s",
		date.Format(dateLayout), slots[0], slots[len(slots)-1]), h.menu)
}

func (h *Handlers) processDeleteWorkHours(c tele.Context, rec *domain.IdentityRecord) error {
	date, err := time.Parse(dateLayout, strings.TrimSpace(c.Text()))
	if err != nil {
		return c.Send("⚠️ Неверный формат даты: " + c.Text())
	}

	if err := h.api.DeleteWorkingSlotsByDate(context.Background(), rec.Token, date.Format(dateLayout)); err != nil {
		return c.Send("❌ Не удалось удалить часы приёма.")
	}

	return c.Send("✅ Часы приёма на "+date.Format(dateLayout)+" удалены.", h.menu)
}

func (h *Handlers) onShowSchedule(c tele.Context) error {
	rec, ok, err := h.authorized(c)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	today := time.Now().Format(dateLayout)

	schedule, err := h.api.GetSchedule(context.Background(), rec.Token, rec.MasterID, today)
	if err != nil {
		h.logger.Warn(logging.Backend, logging.ExternalService, "failed to fetch schedule",
			map[logging.ExtraKey]any{
				logging.MasterID:     rec.MasterID,
				logging.ErrorMessage: err.Error(),
			})
		return c.Send("❌ Не удалось получить расписание на сегодня. Попробуйте позже.", h.menu)
	}

	return c.Send(renderSchedule(schedule, today), h.menu)
}

func renderSchedule(s *backend.Schedule, today string) string {
	var status string
	switch {
	case slices.Contains(s.DaysOff, today):
		status = "📛 Сегодня выходной — приёма нет."
	case len(s.Slots) == 0:
		status = "⚠️ Слоты приёма не указаны — приёмы не запланированы."
	default:
		status = fmt.Sprintf("📆 Сегодня запланировано слотов приёма: %d\n📝 Записей на сегодня: %d",
			len(s.Slots), len(s.Appointments))
	}

	return fmt.Sprintf(
		"📅 Ваше расписание на сегодня:\n\n🕒 Доступные слоты:\n%s\n\n📋 Записи на сегодня:\n%s\n\n%s",
		joinOrDash(s.Slots), joinOrDash(s.Appointments), status)
}

// parseSlotRange validates "10:00 14:30"-style input and returns the times in
// ascending order.
func parseSlotRange(raw string) ([]string, error) {
	valid, invalid := parseTimes(raw)
	if len(invalid) > 0 {
		return nil, fmt.Errorf("⚠️ Неверный формат времени: %s", strings.Join(invalid, ", "))
	}
	if len(valid) != 2 {
		return nil, errors.New("⚠️ Укажите два времени: начало и конец приёма.")
	}

	sort.Slice(valid, func(i, j int) bool { return valid[i].Before(valid[j]) })

	slots := make([]string, 0, len(valid))
	for _, t := range valid {
		slots = append(slots, t.Format(timeLayout))
	}
	return slots, nil
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "—"
	}
	return strings.Join(items, "\n")
}
