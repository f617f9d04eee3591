package bot

import tele "gopkg.in/telebot.v3"

var (
	btnAddDayOff       = tele.Btn{Text: "Добавить выходной"}
	btnRemoveDayOff    = tele.Btn{Text: "Удалить выходной"}
	btnSetHoursWeekday = tele.Btn{Text: "Установить часы приёма на день недели"}
	btnSetHoursDate    = tele.Btn{Text: "Установить часы приёма на дату"}
	btnDeleteHoursDate = tele.Btn{Text: "Удалить часы приёма на дату"}
	btnShowSchedule    = tele.Btn{Text: "Показать расписание"}
)

func mainMenu() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{
		ResizeKeyboard: true,
		Placeholder:    "Выберите действие ⤵️",
	}

	menu.Reply(
		menu.Row(btnAddDayOff),
		menu.Row(btnRemoveDayOff),
		menu.Row(btnSetHoursWeekday),
		menu.Row(btnSetHoursDate),
		menu.Row(btnDeleteHoursDate),
		menu.Row(btnShowSchedule),
	)

	return menu
}
