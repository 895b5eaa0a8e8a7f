package completion

type CommandType string

const (
	CmdCompleteSet    CommandType = "complete_set"
	CmdSkipExercise   CommandType = "skip_exercise"
	CmdUnskipExercise CommandType = "unskip_exercise"
	CmdSetNote        CommandType = "set_note"
)

// Command is the closed set of reducer inputs. Only the types in this package implement it.
type Command interface {
	Type() CommandType
	isCommand()
}

// CompleteSet records or overwrites the performance of one set.
type CompleteSet struct {
	Index int
	Reps  *int
	Load  *float64
	Unit  string
}

type SkipExercise struct {
	Reason string
}

type UnskipExercise struct{}

type SetNote struct {
	Text string
}

func (CompleteSet) Type() CommandType    { return CmdCompleteSet }
func (SkipExercise) Type() CommandType   { return CmdSkipExercise }
func (UnskipExercise) Type() CommandType { return CmdUnskipExercise }
func (SetNote) Type() CommandType        { return CmdSetNote }

func (CompleteSet) isCommand()    {}
func (SkipExercise) isCommand()   {}
func (UnskipExercise) isCommand() {}
func (SetNote) isCommand()        {}
