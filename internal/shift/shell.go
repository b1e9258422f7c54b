// Package shift は勤務シェルの状態機械を提供する。
//
// セッション（不在/勤務中）・メモ帳（閉/最大化/最小化）・引き継ぎ確認
// （未要求/要求中）の3つの独立したUI状態を保持する。元実装では
// 最上位コンポーネントのグローバル状態とアンビエントなイベント
// ブロードキャストだったが、ここでは明示的なシェルオブジェクトと
// コマンドチャネルに再設計している。
package shift

import (
	"context"
	"strings"
	"sync"

	"github.com/hitoshi/gatehouse/internal/model"
)

// NotepadState はメモ帳の表示状態を表す。
type NotepadState string

const (
	// NotepadClosed はメモ帳が閉じている状態。本文は保持されない。
	NotepadClosed NotepadState = "closed"
	// NotepadMaximized はメモ帳が開いて前面にある状態。
	NotepadMaximized NotepadState = "maximized"
	// NotepadMinimized はメモ帳が最小化された状態。本文はメモリ上に保持される。
	NotepadMinimized NotepadState = "minimized"
)

// Command はシェルへ送る指示を表す。
// 任意のページから「メモ帳を開け」という合図を上げるための明示的な
// メッセージで、シェルのRunループが消化する。
type Command int

const (
	// CommandOpenNotepad はメモ帳を最大化で開く指示。
	CommandOpenNotepad Command = iota
)

// EmployeeDirectory は勤務開始・引き継ぎ確認で参照する従業員名簿。
type EmployeeDirectory interface {
	List(ctx context.Context, sortKey string, limit int) ([]model.Employee, error)
}

// IncidentRecorder は引き継ぎ確定時のIncidentレコード作成先。
type IncidentRecorder interface {
	Create(ctx context.Context, rec model.Incident) (model.Incident, error)
}

// SessionStore はセッションスタブの部分集合。
type SessionStore interface {
	Get(ctx context.Context) (*model.Session, error)
	Login(ctx context.Context, personID, personName string) (*model.Session, error)
	Logout(ctx context.Context) error
}

// Sanitizer は保存前のメモ本文からマークアップを除去する。
type Sanitizer interface {
	Sanitize(raw string) string
}

// adminID / adminName は在籍中の従業員が1人もいない初期状態で使う
// 管理用アクセスの身元（従業員登録の入り口を確保するための救済措置）。
const (
	adminID   = "admin-temp"
	adminName = "Administrator (temporary)"
)

// Snapshot はメモ帳まわりの状態のスナップショット。
type Snapshot struct {
	Notepad           NotepadState `json:"notepad"`
	Text              string       `json:"text"`
	Unread            bool         `json:"unread"`
	HandoverRequested bool         `json:"handover_requested"`
	PendingText       string       `json:"pending_text,omitempty"`
}

// Shell は勤務シェルの状態機械。
// 状態遷移はすべてミューテックス下で行い、エラーは遷移不可を表す。
type Shell struct {
	sessions   SessionStore
	employees  EmployeeDirectory
	incidents  IncidentRecorder
	sanitizer  Sanitizer
	passphrase string

	mu          sync.Mutex
	notepad     NotepadState
	text        string
	pendingText string
	requested   bool

	commands chan Command
}

// NewShell はShellを生成する。passphraseは全員共有の合言葉リテラル。
func NewShell(sessions SessionStore, employees EmployeeDirectory, incidents IncidentRecorder, sanitizer Sanitizer, passphrase string) *Shell {
	return &Shell{
		sessions:   sessions,
		employees:  employees,
		incidents:  incidents,
		sanitizer:  sanitizer,
		passphrase: passphrase,
		notepad:    NotepadClosed,
		commands:   make(chan Command, 8),
	}
}

// Commands はシェルへのコマンド送信チャネルを返す。
func (s *Shell) Commands() chan<- Command {
	return s.commands
}

// RaiseOpenNotepad は「メモ帳を開け」コマンドを送る。
// バッファが溢れている場合は黙って落とす（合図であって命令キューではない）。
func (s *Shell) RaiseOpenNotepad() {
	select {
	case s.commands <- CommandOpenNotepad:
	default:
	}
}

// Run はコマンドチャネルを消化するループ。コンテキスト取り消しで終了する。
func (s *Shell) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-s.commands:
			if cmd == CommandOpenNotepad {
				s.OpenNotepad()
			}
		}
	}
}

// --- セッション遷移 ---

// Session は現在のセッションを返す。不在ならnil。
func (s *Shell) Session(ctx context.Context) (*model.Session, error) {
	return s.sessions.Get(ctx)
}

// SignIn は在籍中の従業員の選択と共有合言葉で勤務を開始する。
// 合言葉の不一致はセッション状態を変えずに再入力可能なエラーを返す。
func (s *Shell) SignIn(ctx context.Context, employeeID, passphrase string) (*model.Session, error) {
	if passphrase != s.passphrase {
		return nil, model.NewWrongPassphraseError()
	}

	actives, err := s.activeEmployees(ctx)
	if err != nil {
		return nil, err
	}

	// 在籍者ゼロの初期状態に限り、管理用アクセスで入れる
	if employeeID == adminID {
		if len(actives) > 0 {
			return nil, model.NewEmployeeNotActiveError(employeeID)
		}
		return s.sessions.Login(ctx, adminID, adminName)
	}

	for _, e := range actives {
		if e.ID == employeeID {
			return s.sessions.Login(ctx, e.ID, e.FullName)
		}
	}
	return nil, model.NewEmployeeNotActiveError(employeeID)
}

// SignOut は勤務を終了する。メモ帳と引き継ぎ確認の状態も初期化され、
// シェルは即座にサインイン画面相当の状態に戻る（再起動は不要）。
func (s *Shell) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.notepad = NotepadClosed
	s.text = ""
	s.pendingText = ""
	s.requested = false
	s.mu.Unlock()

	return s.sessions.Logout(ctx)
}

// --- メモ帳遷移 ---

// Notepad は現在のスナップショットを返す。
func (s *Shell) Notepad() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Shell) snapshotLocked() Snapshot {
	return Snapshot{
		Notepad:           s.notepad,
		Text:              s.text,
		Unread:            s.notepad == NotepadMinimized && strings.TrimSpace(s.text) != "",
		HandoverRequested: s.requested,
		PendingText:       s.pendingText,
	}
}

// OpenNotepad はメモ帳を最大化で開く。最小化中なら本文を保持したまま
// 最大化に戻す。閉じていた場合は空の本文で開く。
func (s *Shell) OpenNotepad() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notepad = NotepadMaximized
	return s.snapshotLocked()
}

// SetText はメモ本文を差し替える。最大化中のみ許可。
func (s *Shell) SetText(text string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.notepad != NotepadMaximized {
		return s.snapshotLocked(), model.NewNotepadStateError("本文の編集は最大化中のみ可能です")
	}
	s.text = text
	return s.snapshotLocked(), nil
}

// Minimize はメモ帳を最小化する。本文はメモリ上に保持される。
func (s *Shell) Minimize() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.notepad != NotepadMaximized {
		return s.snapshotLocked(), model.NewNotepadStateError("最大化中のメモ帳のみ最小化できます")
	}
	if s.requested {
		return s.snapshotLocked(), model.NewNotepadStateError("引き継ぎ確認中は最小化できません")
	}
	s.notepad = NotepadMinimized
	return s.snapshotLocked(), nil
}

// Maximize は最小化中のメモ帳を最大化に戻す。本文はそのまま。
func (s *Shell) Maximize() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.notepad != NotepadMinimized {
		return s.snapshotLocked(), model.NewNotepadStateError("最小化中のメモ帳のみ最大化できます")
	}
	s.notepad = NotepadMaximized
	return s.snapshotLocked(), nil
}

// Close はメモ帳を閉じ、本文を破棄する。
func (s *Shell) Close() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.notepad == NotepadClosed {
		return s.snapshotLocked(), nil
	}
	if s.requested {
		return s.snapshotLocked(), model.NewNotepadStateError("引き継ぎ確認中は閉じられません")
	}
	s.notepad = NotepadClosed
	s.text = ""
	return s.snapshotLocked(), nil
}

// --- 引き継ぎ確認遷移 ---

// RequestSave はメモ保存を要求し、引き継ぎ確認を開始する。
// メモ帳は最大化のまま下に残り、本文は確定までpendingTextに控えられる。
func (s *Shell) RequestSave() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.notepad != NotepadMaximized {
		return s.snapshotLocked(), model.NewNotepadStateError("保存要求は最大化中のみ可能です")
	}
	if strings.TrimSpace(s.text) == "" {
		return s.snapshotLocked(), model.NewValidationError("メモ本文が空です")
	}
	s.requested = true
	s.pendingText = s.text
	return s.snapshotLocked(), nil
}

// ConfirmHandover は引き継ぎを確定し、メモ本文と双方の身元を載せた
// Incidentレコードをちょうど1件作成する。成功すると引き継ぎ確認は
// 未要求・メモ帳は閉に戻る。
func (s *Shell) ConfirmHandover(ctx context.Context, outgoingID, incomingID string) (*model.Incident, error) {
	s.mu.Lock()
	if !s.requested {
		s.mu.Unlock()
		return nil, model.NewNotepadStateError("引き継ぎは要求されていません")
	}
	text := s.pendingText
	s.mu.Unlock()

	if outgoingID == "" || incomingID == "" {
		return nil, model.NewHandoverIdentitiesError("双方の担当者を選択してください")
	}
	if outgoingID == incomingID {
		return nil, model.NewHandoverIdentitiesError("同じ担当者同士では引き継げません")
	}

	actives, err := s.activeEmployees(ctx)
	if err != nil {
		return nil, err
	}
	outgoing := findEmployee(actives, outgoingID)
	if outgoing == nil {
		return nil, model.NewHandoverIdentitiesError("送り出し担当者が在籍中ではありません")
	}
	incoming := findEmployee(actives, incomingID)
	if incoming == nil {
		return nil, model.NewHandoverIdentitiesError("受け入れ担当者が在籍中ではありません")
	}

	report := text
	if s.sanitizer != nil {
		report = s.sanitizer.Sanitize(text)
	}

	created, err := s.incidents.Create(ctx, model.Incident{
		OutgoingID:   outgoing.ID,
		OutgoingName: outgoing.FullName,
		IncomingID:   incoming.ID,
		IncomingName: incoming.FullName,
		Report:       report,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.requested = false
	s.pendingText = ""
	s.notepad = NotepadClosed
	s.text = ""
	s.mu.Unlock()

	return &created, nil
}

// CancelHandover は引き継ぎ確認を取り下げる。メモ帳は最大化のまま、
// 本文は失われない。
func (s *Shell) CancelHandover() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requested = false
	s.pendingText = ""
	return s.snapshotLocked()
}

func (s *Shell) activeEmployees(ctx context.Context) ([]model.Employee, error) {
	all, err := s.employees.List(ctx, "", 0)
	if err != nil {
		return nil, err
	}
	actives := all[:0:0]
	for _, e := range all {
		if e.Status == model.EmployeeActive {
			actives = append(actives, e)
		}
	}
	return actives, nil
}

func findEmployee(list []model.Employee, id string) *model.Employee {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}
