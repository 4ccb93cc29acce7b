package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tap-rating-bot/internal/apperror"
	"tap-rating-bot/internal/application/usecases"
	"tap-rating-bot/internal/domain/user"
	"tap-rating-bot/internal/infrastructure/filesystem"
)

type usersCommand struct {
	provider UsersProvider
	users    *usecases.UserUseCase
	release  func() error
}

func newUsersCommand(provider UsersProvider) *cobra.Command {
	uc := &usersCommand{provider: provider}

	cmd := &cobra.Command{
		Use:   "users",
		Short: "Управление пользователями",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			users, closer, err := uc.provider(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to open user store: %w", err)
			}
			uc.users = users
			uc.release = closer.Close
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if uc.release == nil {
				return nil
			}
			return uc.release()
		},
	}

	cmd.AddCommand(
		uc.listCommand(),
		uc.getCommand(),
		uc.createCommand(),
		uc.updateCommand(),
		uc.deleteCommand(),
		uc.importCommand(),
	)

	return cmd
}

func (uc *usersCommand) listCommand() *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Показать список пользователей",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var (
				users []*user.User
				err   error
			)
			if activeOnly {
				users, err = uc.users.ListActiveUsers(ctx)
			} else {
				users, err = uc.users.ListUsers(ctx)
			}
			if err != nil {
				return err
			}

			if len(users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Пользователи не найдены")
				return nil
			}
			return printUsers(cmd.OutOrStdout(), users)
		},
	}

	cmd.Flags().BoolVarP(&activeOnly, "active", "a", false, "Показать только активных пользователей")
	return cmd
}

func (uc *usersCommand) getCommand() *cobra.Command {
	var id, telegramID int64

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Получить информацию о пользователе",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var (
				u   *user.User
				err error
			)
			switch {
			case id != 0:
				u, err = uc.users.GetUser(ctx, user.ID(id))
			case telegramID != 0:
				u, err = uc.users.GetUserByTelegramID(ctx, user.TelegramID(telegramID))
			default:
				return errors.New("необходимо указать --id или --telegram-id")
			}
			if err != nil {
				return err
			}

			return printUser(cmd.OutOrStdout(), u)
		},
	}

	cmd.Flags().Int64VarP(&id, "id", "i", 0, "ID пользователя")
	cmd.Flags().Int64VarP(&telegramID, "telegram-id", "t", 0, "Telegram ID пользователя")
	cmd.MarkFlagsMutuallyExclusive("id", "telegram-id")
	return cmd
}

func (uc *usersCommand) createCommand() *cobra.Command {
	var in usecases.CreateUserInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Создать нового пользователя",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := uc.users.CreateUser(cmd.Context(), in)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Пользователь успешно создан:")
			return printUser(cmd.OutOrStdout(), u)
		},
	}

	cmd.Flags().Int64VarP(&in.TelegramID, "telegram-id", "t", 0, "Telegram ID пользователя")
	cmd.Flags().StringVarP(&in.Username, "username", "u", "", "Имя пользователя в Telegram")
	cmd.Flags().StringVarP(&in.FirstName, "first-name", "f", "", "Имя пользователя")
	cmd.Flags().StringVarP(&in.LastName, "last-name", "l", "", "Фамилия пользователя")
	_ = cmd.MarkFlagRequired("telegram-id")
	return cmd
}

func (uc *usersCommand) updateCommand() *cobra.Command {
	var (
		id        int64
		username  string
		firstName string
		lastName  string
		active    bool
		inactive  bool
		admin     bool
		noAdmin   bool
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Обновить информацию о пользователе",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			var in usecases.UpdateUserInput

			if flags.Changed("username") {
				in.Username = &username
			}
			if flags.Changed("first-name") {
				in.FirstName = &firstName
			}
			if flags.Changed("last-name") {
				in.LastName = &lastName
			}
			if flags.Changed("active") {
				in.IsActive = &active
			}
			if flags.Changed("inactive") {
				isActive := !inactive
				in.IsActive = &isActive
			}
			if flags.Changed("admin") {
				in.IsAdmin = &admin
			}
			if flags.Changed("no-admin") {
				isAdmin := !noAdmin
				in.IsAdmin = &isAdmin
			}

			u, err := uc.users.UpdateUser(cmd.Context(), user.ID(id), in)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Пользователь успешно обновлен:")
			return printUser(cmd.OutOrStdout(), u)
		},
	}

	cmd.Flags().Int64VarP(&id, "id", "i", 0, "ID пользователя")
	cmd.Flags().StringVarP(&username, "username", "u", "", "Имя пользователя в Telegram")
	cmd.Flags().StringVarP(&firstName, "first-name", "f", "", "Имя пользователя")
	cmd.Flags().StringVarP(&lastName, "last-name", "l", "", "Фамилия пользователя")
	cmd.Flags().BoolVar(&active, "active", false, "Сделать пользователя активным")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Сделать пользователя неактивным")
	cmd.Flags().BoolVar(&admin, "admin", false, "Назначить администратором")
	cmd.Flags().BoolVar(&noAdmin, "no-admin", false, "Снять права администратора")
	_ = cmd.MarkFlagRequired("id")
	cmd.MarkFlagsMutuallyExclusive("active", "inactive")
	cmd.MarkFlagsMutuallyExclusive("admin", "no-admin")
	return cmd
}

func (uc *usersCommand) deleteCommand() *cobra.Command {
	var (
		id    int64
		force bool
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Удалить пользователя",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				fmt.Fprintf(cmd.OutOrStdout(), "Вы уверены, что хотите удалить пользователя с ID %d? [y/N]: ", id)
				if !confirmed(cmd) {
					fmt.Fprintln(cmd.OutOrStdout(), "Удаление отменено")
					return nil
				}
			}

			if err := uc.users.DeleteUser(cmd.Context(), user.ID(id)); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Пользователь с ID %d успешно удален\n", id)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&id, "id", "i", 0, "ID пользователя")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Подтвердить удаление без запроса")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// importCommand seeds users from a JSON file; existing Telegram IDs are skipped
func (uc *usersCommand) importCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Импортировать пользователей из JSON-файла",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := filesystem.NewUserLoader().LoadFromFile(file)
			if err != nil {
				return err
			}

			var created, skipped int
			for _, entry := range entries {
				_, err := uc.users.CreateUser(cmd.Context(), usecases.CreateUserInput{
					TelegramID: entry.TelegramID,
					Username:   entry.Username,
					FirstName:  entry.FirstName,
					LastName:   entry.LastName,
					IsActive:   entry.IsActive,
					IsAdmin:    entry.IsAdmin,
				})
				switch {
				case apperror.IsConflict(err):
					skipped++
				case err != nil:
					return fmt.Errorf("telegram_id %d: %w", entry.TelegramID, err)
				default:
					created++
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Создано: %d, пропущено: %d\n", created, skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Путь к JSON-файлу с пользователями")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func confirmed(cmd *cobra.Command) bool {
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "д", "да":
		return true
	default:
		return false
	}
}
