package config

type Bot struct {
	Token    string  `env:"BOT_TOKEN,required"`
	OwnerID  int64   `env:"OWNER_ID,required"`
	GroupID  int64   `env:"GROUP_ID,required"`
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`
}
