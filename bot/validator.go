package bot

import "github.com/go-playground/validator/v10"

var validate = validator.New()

type nicknameArg struct {
	Nickname string `validate:"required,min=1,max=64"`
}

// validNickname checks the already-trimmed nickname argument.
func validNickname(nick string) bool {
	return validate.Struct(nicknameArg{Nickname: nick}) == nil
}
