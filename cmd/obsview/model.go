package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	orderbookv1 "github.com/ordermesh/orderbook-aggregator/proto/orderbook/v1"
)

// summaryMsg carries one streamed summary into the Bubble Tea update loop.
type summaryMsg struct {
	summary *orderbookv1.Summary
}

// streamErrMsg reports the stream ending, successfully or not.
type streamErrMsg struct {
	err error
}

type model struct {
	addr     string
	keys     keyMap
	width    int
	height   int
	quitting bool

	connected  bool
	lastErr    error
	lastUpdate time.Time
	summary    *orderbookv1.Summary

	summaries <-chan summaryMsg
	errs      <-chan streamErrMsg
}

func newModel(addr string, summaries <-chan summaryMsg, errs <-chan streamErrMsg) model {
	return model{
		addr:      addr,
		keys:      defaultKeyMap(),
		summaries: summaries,
		errs:      errs,
	}
}

func (m model) Init() tea.Cmd {
	return m.waitForSummary()
}

func (m model) waitForSummary() tea.Cmd {
	return func() tea.Msg {
		select {
		case s, ok := <-m.summaries:
			if !ok {
				return streamErrMsg{err: nil}
			}
			return s
		case e := <-m.errs:
			return e
		}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case msg.String() == "q", msg.String() == "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case summaryMsg:
		m.connected = true
		m.lastErr = nil
		m.lastUpdate = time.Now()
		m.summary = msg.summary
		return m, m.waitForSummary()

	case streamErrMsg:
		m.connected = false
		m.lastErr = msg.err
		return m, m.waitForSummary()
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("orderbook-aggregator viewer") + "\n\n")

	status := statusWaiting.Render("waiting for first summary...")
	switch {
	case m.lastErr != nil:
		status = statusError.Render(fmt.Sprintf("stream error: %v", m.lastErr))
	case m.connected:
		status = statusConnected.Render(fmt.Sprintf("connected to %s, updated %s ago", m.addr, time.Since(m.lastUpdate).Round(time.Millisecond)))
	}
	b.WriteString(status + "\n\n")

	if m.summary != nil {
		b.WriteString(boxStyle.Render(m.renderBook()) + "\n\n")
	}

	b.WriteString(helpStyle.Render("q: quit"))
	return b.String()
}

func (m model) renderBook() string {
	var b strings.Builder

	spread := "n/a"
	if m.summary.HasSpread {
		spread = m.summary.Spread.View
	}
	b.WriteString(fmt.Sprintf("spread: %s\n\n", spread))

	b.WriteString(tableHeaderStyle.Render(fmt.Sprintf("%-12s %-14s %-14s %-12s %-14s %-14s", "bid exch", "bid price", "bid qty", "ask exch", "ask price", "ask qty")))
	b.WriteString("\n")

	rows := len(m.summary.Bids)
	if len(m.summary.Asks) > rows {
		rows = len(m.summary.Asks)
	}

	for i := 0; i < rows; i++ {
		var bidExch, bidPrice, bidQty, askExch, askPrice, askQty string
		if i < len(m.summary.Bids) {
			lvl := m.summary.Bids[i]
			bidExch, bidPrice, bidQty = lvl.Exchange, lvl.Price.View, lvl.Amount.View
		}
		if i < len(m.summary.Asks) {
			lvl := m.summary.Asks[i]
			askExch, askPrice, askQty = lvl.Exchange, lvl.Price.View, lvl.Amount.View
		}
		bidCols := fmt.Sprintf("%-12s %-14s %-14s", bidExch, bidPrice, bidQty)
		askCols := fmt.Sprintf("%-12s %-14s %-14s", askExch, askPrice, askQty)
		b.WriteString(tableCellStyle.Render(bidStyle.Render(bidCols) + " " + askStyle.Render(askCols)))
		b.WriteString("\n")
	}

	return b.String()
}
