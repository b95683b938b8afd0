// Package dashui provides the Bubble Tea dashboard interface.
package dashui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/studydash/internal/analytics"
	"github.com/verte-zerg/studydash/internal/model"
)

const (
	tabStudy = iota
	tabFocus
	tabSeats
	tabChallenge
)

const (
	loadTimeout  = 30 * time.Second
	maxBarWidth  = 40
	prefLabelPad = 10
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	modalStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0B0B0B")).
			Background(lipgloss.Color("#52C41A")).
			Padding(0, 1)
)

var tokenColors = map[analytics.ColorToken]lipgloss.Color{
	analytics.ColorPositiveSubtle: lipgloss.Color("#16361F"),
	analytics.ColorPositiveBorder: lipgloss.Color("#389E0D"),
	analytics.ColorPositiveText:   lipgloss.Color("#73D13D"),
	analytics.ColorNegativeSubtle: lipgloss.Color("#3A1616"),
	analytics.ColorNegativeBorder: lipgloss.Color("#CF1322"),
	analytics.ColorNegativeText:   lipgloss.Color("#FF7875"),
	analytics.ColorNeutralSubtle:  lipgloss.Color("#262626"),
	analytics.ColorNeutralBorder:  lipgloss.Color("#595959"),
	analytics.ColorNeutralText:    lipgloss.Color("#BFBFBF"),
	analytics.ColorSeatWindow:     lipgloss.Color("#4096FF"),
	analytics.ColorSeatCorner:     lipgloss.Color("#9254DE"),
	analytics.ColorSeatIsolated:   lipgloss.Color("#F759AB"),
	analytics.ColorSeatAisle:      lipgloss.Color("#FA8C16"),
	analytics.ColorSeatCenter:     lipgloss.Color("#52C41A"),
	analytics.ColorSeatBeverage:   lipgloss.Color("#13C2C2"),
	analytics.ColorSeatDefault:    lipgloss.Color("#8C8C8C"),
}

// Loader supplies dashboard reports and submits challenge selections.
type Loader interface {
	Report(ctx context.Context, mode string) (analytics.Report, error)
	SelectChallenge(ctx context.Context, d model.Dashboard, challengeID int64) (model.ChallengeSelection, error)
	Offline() bool
}

type reportMsg struct {
	report analytics.Report
	err    error
}

type selectMsg struct {
	selection model.ChallengeSelection
	err       error
}

// Model implements the Bubble Tea dashboard UI.
type Model struct {
	loader Loader
	mode   string

	report    analytics.Report
	loaded    bool
	loading   bool
	errMsg    string
	statusMsg string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	seatTable table.Model

	pickMode    bool
	pickOffered bool
	picker      *analytics.ChallengeSelection
	pickTable   table.Model
	pickError   string
	submitting  bool

	width  int
	height int
}

// NewModel constructs a dashboard UI model.
func NewModel(loader Loader, mode string) *Model {
	if mode != model.ModeMonth {
		mode = model.ModeWeek
	}
	m := &Model{
		loader: loader,
		mode:   mode,
		tabs:   []string{"Study", "Focus", "Seats", "Challenge"},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.seatTable = table.New(table.WithStyles(tableStyles()))
	m.pickTable = table.New(table.WithStyles(tableStyles()), table.WithFocused(true))
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return m.loadCmd()
}

func (m *Model) loadCmd() tea.Cmd {
	loader, mode := m.loader, m.mode
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		rep, err := loader.Report(ctx, mode)
		return reportMsg{report: rep, err: err}
	}
}

func (m *Model) selectCmd(id int64) tea.Cmd {
	loader, d := m.loader, m.report.Dashboard
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		sel, err := loader.SelectChallenge(ctx, d, id)
		return selectMsg{selection: sel, err: err}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case reportMsg:
		return m.applyReport(msg)
	case selectMsg:
		return m.applySelection(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.pickMode {
			return m.updatePicker(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "m":
			m.mode = toggleMode(m.mode)
			m.loading = true
			return m, m.loadCmd()
		case "r":
			m.loading = true
			m.statusMsg = ""
			return m, m.loadCmd()
		case "enter", "s":
			if m.activeTab == tabChallenge && m.canPick() {
				m.openPicker()
			}
			return m, nil
		case "g", "home":
			m.scrollTop()
			return m, nil
		case "G", "end":
			m.scrollBottom()
			return m, nil
		default:
			if m.activeTab == tabSeats && !m.report.View.Seats.Board.Insufficient {
				var cmd tea.Cmd
				m.seatTable, cmd = m.seatTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) applyReport(msg reportMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.errMsg = msg.err.Error()
		if !m.loaded {
			for i := range m.viewports {
				m.viewports[i].SetContent("Failed to load dashboard.")
			}
		}
		return m, nil
	}
	m.errMsg = ""
	m.loaded = true
	m.report = msg.report
	m.seatTable.SetColumns(seatColumns())
	m.seatTable.SetRows(seatRows(m.report.View.Seats.Board))
	m.updateLayout()
	m.renderTabContents()
	if !m.pickOffered && m.canPick() {
		m.pickOffered = true
		m.activeTab = tabChallenge
		m.openPicker()
	}
	return m, nil
}

func (m *Model) applySelection(msg selectMsg) (tea.Model, tea.Cmd) {
	m.submitting = false
	if msg.err != nil {
		m.pickError = msg.err.Error()
		return m, nil
	}
	m.pickMode = false
	m.picker = nil
	m.pickError = ""
	m.statusMsg = "도전과제를 선택했습니다: #" + strconv.FormatInt(msg.selection.ChallengeID, 10)
	m.loading = true
	return m, m.loadCmd()
}

func (m *Model) canPick() bool {
	return m.loaded &&
		m.loader != nil &&
		!m.loader.Offline() &&
		m.report.View.Challenge.State == analytics.StateNone &&
		len(m.report.View.Candidates) > 0
}

func (m *Model) openPicker() {
	m.picker = analytics.NewChallengeSelection(m.report.View.Candidates)
	m.pickTable.SetColumns(pickColumns())
	m.pickTable.SetRows(pickRows(m.picker.Candidates()))
	m.pickTable.SetCursor(0)
	m.pickTable.SetHeight(minInt(len(m.picker.Candidates()), 8) + 1)
	m.pickTable.Focus()
	m.pickError = ""
	m.pickMode = true
}

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	switch msg.String() {
	case "esc", "q":
		m.pickMode = false
		m.picker = nil
		m.pickError = ""
		return m, nil
	case "enter":
		candidates := m.picker.Candidates()
		idx := m.pickTable.Cursor()
		if idx < 0 || idx >= len(candidates) {
			m.pickError = analytics.ErrNoSelection.Error()
			return m, nil
		}
		if err := m.picker.Choose(candidates[idx].ID); err != nil {
			m.pickError = err.Error()
			return m, nil
		}
		id, err := m.picker.Ready()
		if err != nil {
			m.pickError = err.Error()
			return m, nil
		}
		m.submitting = true
		m.pickError = ""
		return m, m.selectCmd(id)
	default:
		var cmd tea.Cmd
		m.pickTable, cmd = m.pickTable.Update(msg)
		return m, cmd
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.pickMode {
		return fitLines(m.renderPicker(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" || m.statusMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.seatTable.SetWidth(m.width)
	m.seatTable.SetHeight(maxInt(1, bodyHeight-preferenceHeight(m.report.View.Seats)))
	m.pickTable.SetWidth(modalInnerWidth(m.width))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabSeats {
		m.seatTable.Focus()
	} else {
		m.seatTable.Blur()
	}
}

func (m *Model) scrollTop() {
	if m.activeTab == tabSeats {
		m.seatTable.GotoTop()
		return
	}
	m.viewports[m.activeTab].GotoTop()
}

func (m *Model) scrollBottom() {
	if m.activeTab == tabSeats {
		m.seatTable.GotoBottom()
		return
	}
	m.viewports[m.activeTab].GotoBottom()
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	return tabs + "\n" + padLines(m.renderSummary(), m.width)
}

func (m *Model) renderSummary() string {
	parts := []string{"mode=" + m.mode}
	if m.loaded {
		parts = append(parts, "member="+strconv.FormatInt(m.report.Dashboard.MemberID, 10))
		if !m.report.Dashboard.FetchedAt.IsZero() {
			parts = append(parts, "fetched="+m.report.Dashboard.FetchedAt.Local().Format("2006-01-02 15:04"))
		}
	}
	if m.loader != nil && m.loader.Offline() {
		parts = append(parts, "offline")
	}
	if m.loading {
		parts = append(parts, "loading...")
	}
	return headerStyle.Render(truncateLine(strings.Join(parts, "  "), m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Week/Month: m  Refresh: r  Quit: q"
	if m.activeTab == tabChallenge && m.canPick() {
		help = "Nav: left/right  Select challenge: enter  Week/Month: m  Refresh: r  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFooter() string {
	switch {
	case m.errMsg != "":
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	case m.statusMsg != "":
		return m.renderHelp() + "\n" + statusStyle.Render(m.statusMsg)
	default:
		return m.renderHelp()
	}
}

func (m *Model) renderBody(height int) string {
	if !m.loaded {
		if m.errMsg != "" {
			return fitLines("Failed to load dashboard.", m.width, height)
		}
		return fitLines("Loading...", m.width, height)
	}
	if m.activeTab == tabSeats && !m.report.View.Seats.Board.Insufficient {
		prefs := renderPreferences(m.report.View.Seats.Preferences, m.width)
		view := m.seatTable.View()
		if prefs != "" {
			view = prefs + "\n\n" + view
		}
		return fitLines(view, m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 || !m.loaded {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	view := m.report.View
	m.viewports[tabStudy].SetContent(renderStudy(view.Study, width))
	m.viewports[tabFocus].SetContent(renderFocus(view.Focus, view.Pattern, width))
	m.viewports[tabSeats].SetContent(renderInsufficientSeats(view.Seats.Board))
	m.viewports[tabChallenge].SetContent(renderChallenge(view.Challenge, width))
}

func renderStudy(s analytics.StudyView, width int) string {
	title := "이번 주"
	if s.Mode == model.ModeMonth {
		title = "이번 달"
	}
	cards := []string{
		metricCard(title+" 이용시간", s.TotalLabel),
		metricCard(title+" 집중시간", s.FocusLabel),
		metricCard("집중 비율", s.FocusPercentLabel),
	}
	summary := joinCards(cards, width)
	var buf bytes.Buffer
	if err := analytics.RenderDayBars(&buf, s.Days, width, true); err != nil {
		return summary + "\n\n" + fmt.Sprintf("Failed to render days: %v", err)
	}
	return strings.TrimRight(summary+"\n\n"+buf.String(), "\n")
}

func renderFocus(f analytics.FocusView, p analytics.PatternView, width int) string {
	best := f.BestLabel
	if f.BestDateLabel != "" {
		best += " (" + f.BestDateLabel + ")"
	}
	trend := lipgloss.NewStyle().
		Foreground(tokenColor(f.Trend.Foreground)).
		Background(tokenColor(f.Trend.Background)).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder(), true).
		BorderForeground(tokenColor(f.Trend.Border)).
		Render(trendLabel(f.Trend.Kind))
	top := joinCards([]string{
		metricCard("평균 집중시간", f.AverageLabel),
		metricCard("최고 기록", best),
		trend,
	}, width)
	pattern := joinCards([]string{
		metricCard("최고 집중 요일", p.BestDay+" "+p.FocusScore),
		metricCard("최고 집중 시간", p.BestHour),
		metricCard("골든타임", p.GoldenWindow),
		metricCard("일 평균", p.DailyAverage),
		metricCard("연속 기록", p.Streak),
	}, width)
	lines := []string{top}
	if f.Analysis != "" {
		lines = append(lines, f.Analysis)
	}
	if f.Coaching != "" {
		lines = append(lines, headerStyle.Render(f.Coaching))
	}
	lines = append(lines, "", pattern)
	return strings.Join(lines, "\n")
}

func renderInsufficientSeats(b analytics.SeatBoard) string {
	if !b.Insufficient {
		return ""
	}
	return strings.Join([]string{cardValueStyle.Render(b.Title), b.Message.Analysis, headerStyle.Render(b.Message.Coaching)}, "\n")
}

func renderPreferences(prefs []analytics.PreferenceBar, width int) string {
	if len(prefs) == 0 {
		return ""
	}
	barWidth := maxInt(10, minInt(maxBarWidth, width-prefLabelPad-8))
	lines := make([]string, 0, len(prefs))
	for _, p := range prefs {
		label := runewidth.FillRight(runewidth.Truncate(string(p.SeatType), prefLabelPad, ""), prefLabelPad)
		bar := lipgloss.NewStyle().Foreground(tokenColor(p.Color)).Render(analytics.Bar(p.Percent, barWidth))
		lines = append(lines, fmt.Sprintf("%s %s %s", label, bar, p.Label))
	}
	return strings.Join(lines, "\n")
}

func renderChallenge(c analytics.ChallengeView, width int) string {
	if c.State == analytics.StateNone {
		return strings.Join([]string{cardValueStyle.Render(c.Heading), headerStyle.Render(c.Title)}, "\n")
	}
	title := cardValueStyle.Render(c.Title)
	if c.Completed {
		title += " " + badgeStyle.Render("완료")
	}
	barWidth := maxInt(10, minInt(maxBarWidth, width/2))
	lines := []string{
		headerStyle.Render(c.Heading),
		title,
	}
	if c.Description != "" {
		lines = append(lines, c.Description)
	}
	lines = append(lines,
		"",
		analytics.Bar(c.Percent, barWidth)+" "+analytics.PercentLabel(c.Percent),
		fmt.Sprintf("누적: %s  목표: %s", c.CurrentLabel, c.TargetLabel),
	)
	return strings.Join(lines, "\n")
}

func (m *Model) renderPicker() string {
	body := []string{cardValueStyle.Render("도전과제를 선택하세요"), "", m.pickTable.View()}
	if chosen, ok := m.selectedCandidate(); ok && chosen.Description != "" {
		body = append(body, "", headerStyle.Render(chosen.Description))
	}
	body = append(body, "", headerStyle.Render("Up/Down to move / Enter to select / Esc to cancel"))
	if m.submitting {
		body = append(body, headerStyle.Render("Submitting..."))
	}
	if m.pickError != "" {
		body = append(body, errorStyle.Render(m.pickError))
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) selectedCandidate() (model.Challenge, bool) {
	if m.picker == nil {
		return model.Challenge{}, false
	}
	candidates := m.picker.Candidates()
	idx := m.pickTable.Cursor()
	if idx < 0 || idx >= len(candidates) {
		return model.Challenge{}, false
	}
	return candidates[idx], true
}

func seatColumns() []table.Column {
	return []table.Column{
		{Title: "순위", Width: 4},
		{Title: "좌석", Width: 10},
		{Title: "유형", Width: 10},
		{Title: "이용시간", Width: 12},
	}
}

func seatRows(b analytics.SeatBoard) []table.Row {
	rows := make([]table.Row, 0, len(b.Entries))
	for _, e := range b.Entries {
		rows = append(rows, table.Row{
			strconv.Itoa(e.Rank),
			e.SeatLabel,
			string(e.SeatType),
			e.UsageLabel,
		})
	}
	return rows
}

func pickColumns() []table.Column {
	return []table.Column{
		{Title: "도전과제", Width: 24},
		{Title: "목표", Width: 12},
	}
}

func pickRows(candidates []model.Challenge) []table.Row {
	rows := make([]table.Row, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, table.Row{c.Title, analytics.MetricLabel(c.Kind, c.TargetValue)})
	}
	return rows
}

func preferenceHeight(s analytics.SeatView) int {
	if len(s.Preferences) == 0 {
		return 0
	}
	return len(s.Preferences) + 2
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func joinCards(cards []string, width int) string {
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func tokenColor(token analytics.ColorToken) lipgloss.Color {
	if c, ok := tokenColors[token]; ok {
		return c
	}
	return tokenColors[analytics.ColorNeutralText]
}

func trendLabel(kind analytics.TrendKind) string {
	switch kind {
	case analytics.TrendImproving:
		return "▲ 지난주보다 상승"
	case analytics.TrendDeclining:
		return "▼ 지난주보다 하락"
	default:
		return "- 지난주와 비슷"
	}
}

func toggleMode(mode string) string {
	if mode == model.ModeMonth {
		return model.ModeWeek
	}
	return model.ModeMonth
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func modalWidth(width int) int {
	return maxInt(40, minInt(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width)
	w -= 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
