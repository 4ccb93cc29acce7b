package shared

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tap-rating-bot/internal/application/usecases"
	"tap-rating-bot/internal/domain/user"
)

// Reply keyboard buttons
const (
	ButtonRating   = "Рейтинг"
	ButtonTap      = "Нажать"
	ButtonSettings = "Настройки"
	ButtonCancel   = "Отмена"
)

// Canned replies
const (
	WelcomeText         = "Добро пожаловать! Я бот для подсчета нажатий.\nИспользуйте /help для получения списка команд."
	RegisterText        = "Добро пожаловать! Давайте зарегистрируем вас.\nВведите ваше имя:"
	AskNameText         = "Введите ваше имя:"
	AskInfoText         = "Введите информацию о себе:"
	AskPhotoText        = "Отправьте фотографию:"
	PhotoRequiredText   = "Пожалуйста, отправьте фотографию."
	TextRequiredText    = "Не вижу в сообщении текста, попробуйте еще раз!"
	ProfileUpdatedText  = "Профиль успешно обновлен!"
	CancelledText       = "Операция отменена."
	PleaseRegisterText  = "Пожалуйста, зарегистрируйтесь для использования бота."
	NotRegisteredText   = "Вы не зарегистрированы. Используйте /register для регистрации."
	UnknownMessageText  = "Используйте /help для получения списка команд."
	InternalErrorText   = "Произошла ошибка, попробуйте позже."
	AdminOnlyText       = "Команда доступна только администраторам."
	PhotoRetryErrorText = "Не удалось получить фотографию, отправьте ее еще раз."
)

// CreateMainKeyboard creates the persistent main menu keyboard
func CreateMainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonRating),
			tgbotapi.NewKeyboardButton(ButtonTap),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonSettings),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

// CreateCancelKeyboard creates the keyboard shown while the profile form is open
func CreateCancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonCancel),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

// GetHelpText returns the standard help text
func GetHelpText() string {
	return "Доступные команды:\n" +
		"/start - Запустить бота\n" +
		"/help - Показать справку\n" +
		"/register - Зарегистрироваться\n" +
		"/profile - Показать профиль\n" +
		"/settings - Изменить профиль\n" +
		ButtonRating + " - Показать рейтинг пользователей\n" +
		ButtonTap + " - Увеличить счетчик нажатий\n" +
		ButtonSettings + " - Настроить профиль"
}

// FormatProfileText formats the caller's own profile
func FormatProfileText(u *user.User) string {
	return fmt.Sprintf(
		"👤 Ваш профиль:\n\n"+
			"Имя: %s\n"+
			"Информация: %s\n"+
			"Нажатий: %d\n",
		u.FirstName(), u.Info(), u.Taps())
}

// FormatTapText formats the reply to a tap
func FormatTapText(u *user.User) string {
	return fmt.Sprintf("Нажатий: %d", u.Taps())
}

// FormatLeaderboardText formats the rating screen
func FormatLeaderboardText(board *usecases.Leaderboard) string {
	var b strings.Builder
	b.WriteString("📊 Рейтинг пользователей\n\n")
	fmt.Fprintf(&b, "Ваши нажатия: %d\n", board.Me.Taps())
	fmt.Fprintf(&b, "Всего нажатий: %d\n\n", board.TotalTaps)
	b.WriteString("Топ пользователей:\n")
	for i, u := range board.Top {
		fmt.Fprintf(&b, "%d. %s: %d\n", i+1, u.DisplayName(), u.Taps())
	}
	return b.String()
}

// FormatDigestReport summarises a manual digest run for an admin
func FormatDigestReport(report usecases.DigestReport) string {
	return fmt.Sprintf(
		"Дайджест отправлен.\n\n"+
			"Получателей: %d\n"+
			"Доставлено: %d\n"+
			"Ошибок: %d\n"+
			"Деактивировано: %d",
		report.Recipients, report.Sent, report.Failed, report.Deactivated)
}

// PromptText maps a registration step to the message shown to the user
func PromptText(prompt usecases.Prompt) string {
	switch prompt {
	case usecases.PromptAskName:
		return AskNameText
	case usecases.PromptAskInfo:
		return AskInfoText
	case usecases.PromptAskPhoto:
		return AskPhotoText
	case usecases.PromptTextRequired:
		return TextRequiredText
	case usecases.PromptPhotoRequired:
		return PhotoRequiredText
	case usecases.PromptCompleted:
		return ProfileUpdatedText
	case usecases.PromptCancelled:
		return CancelledText
	default:
		return ""
	}
}
