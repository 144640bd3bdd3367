package service

// Action — инлайн-кнопка: подпись и callback data.
type Action struct {
	Label string
	Data  string
}

type InstructionKind string

const (
	PromptUser  InstructionKind = "prompt_user"   // следующий вопрос анкеты
	ReplyToUser InstructionKind = "reply_to_user" // ответ инициатору события
	PostToGroup InstructionKind = "post_to_group" // пост в группу сделок
	NotifyOwner InstructionKind = "notify_owner"  // сообщение владельцу бота
)

// Instruction — инертная исходящая инструкция. Доставка — дело транспорта,
// ядро только описывает, кому и что отправить.
type Instruction struct {
	Kind    InstructionKind
	UserID  int64 // для prompt_user / reply_to_user
	Text    string
	Actions []Action // каждая кнопка своим рядом, как в карточке сделки
}

func prompt(userID int64, text string) Instruction {
	return Instruction{Kind: PromptUser, UserID: userID, Text: text}
}

func reply(userID int64, text string) Instruction {
	return Instruction{Kind: ReplyToUser, UserID: userID, Text: text}
}

func group(text string, actions ...Action) Instruction {
	return Instruction{Kind: PostToGroup, Text: text, Actions: actions}
}

func owner(text string, actions ...Action) Instruction {
	return Instruction{Kind: NotifyOwner, Text: text, Actions: actions}
}
