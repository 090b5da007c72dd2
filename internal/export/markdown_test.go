package export

import (
	"strings"
	"testing"
	"time"

	"github.com/muurk/kioskcfg/internal/kiosk"
)

var generatedAt = time.Date(2026, 3, 5, 14, 7, 0, 0, time.UTC)

func TestMarkdown_MultiApp(t *testing.T) {
	md := Markdown(multiConfig(), generatedAt)

	expectedParts := []string{
		"# Kiosk Configuration Summary\n\n**Configuration:** Front Desk\n\nGenerated: 2026-03-05 2:07 PM\n",
		"## Kiosk Mode\n\n**Type:** Multi-App\n",
		"**Type:** Auto Logon (Managed)\n**Display Name:** Kiosk User\n",
		"1. " + kiosk.EdgePath + " **(Auto-Launch)**\n2. C:\\Windows\\System32\\notepad.exe\n",
		"## Edge Auto-Launch Settings\n\n**URL:** https://intranet.example.com\n**Kiosk Type:** Fullscreen\n",
		"1. **Notepad**\n   - Target: C:\\Windows\\System32\\notepad.exe\n   - Arguments: /A\n",
		"2. **Calculator**\n   - App ID: Microsoft.WindowsCalculator_8wekyb3d8bbwe!App\n",
		"   - Uses system shortcut\n",
		"4. **Portal**\n   - Tile URL: https://portal.example.com\n",
		"**Taskbar:** Hidden\n**File Explorer Access:** Downloads folder only\n",
		"**Profile GUID:** {11111111-2222-3333-4444-555555555555}\n",
		`-File "AssignedAccess-Front-Desk.ps1"`,
	}
	for _, part := range expectedParts {
		if !strings.Contains(md, part) {
			t.Errorf("Markdown() missing %q in:\n%s", part, md)
		}
	}
	if strings.Contains(md, "## Application") {
		t.Error("Multi-app summary must not describe a single app")
	}
}

func TestMarkdown_SingleApp(t *testing.T) {
	tests := []struct {
		name     string
		app      kiosk.SingleApp
		expected []string
	}{
		{
			name: "edge public browsing",
			app: kiosk.SingleApp{Kind: kiosk.AppEdge, Edge: kiosk.EdgeSettings{
				Source: kiosk.SourceURL, URL: "https://example.com", KioskType: kiosk.KioskPublicBrowsing, IdleTimeoutMinutes: 5,
			}},
			expected: []string{"**URL:** https://example.com\n", "**Kiosk Type:** Public Browsing\n", "**Idle Timeout:** 5 minutes\n"},
		},
		{
			name: "edge local file",
			app: kiosk.SingleApp{Kind: kiosk.AppEdge, Edge: kiosk.EdgeSettings{
				Source: kiosk.SourceFile, FilePath: `C:\Kiosk\index.html`, KioskType: kiosk.KioskFullscreen,
			}},
			expected: []string{"**URL:** file:///C:/Kiosk/index.html\n", "Fullscreen (Digital Signage)"},
		},
		{
			name:     "uwp without AUMID",
			app:      kiosk.SingleApp{Kind: kiosk.AppUWP},
			expected: []string{"**App:** UWP/Store App\n**AUMID:** (not set)\n"},
		},
		{
			name:     "win32 with breakout",
			app:      kiosk.SingleApp{Kind: kiosk.AppWin32, Path: `C:\pos.exe`, Args: "-full", Breakout: &kiosk.BreakoutSequence{Ctrl: true, Alt: true, Key: "K"}},
			expected: []string{"**Path:** C:\\pos.exe\n**Arguments:** -full\n", "## Breakout Sequence\n\n**Enabled:** Yes\n**Key Combination:** Ctrl+Alt+K\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := kiosk.NewConfiguration()
			cfg.SingleApp = tt.app
			md := Markdown(cfg, generatedAt)
			for _, part := range tt.expected {
				if !strings.Contains(md, part) {
					t.Errorf("Markdown() missing %q in:\n%s", part, md)
				}
			}
			if strings.Contains(md, "**Configuration:**") {
				t.Error("Unnamed configuration must not print a name")
			}
			if !strings.Contains(md, `-File "AssignedAccessConfig.ps1"`) {
				t.Error("Expected the default script name")
			}
		})
	}
}

func TestMarkdown_Accounts(t *testing.T) {
	tests := []struct {
		account  kiosk.AccountBinding
		expected string
	}{
		{kiosk.ExistingAccount(""), "**Type:** Existing Account\n**Account:** (not set)\n"},
		{kiosk.UserGroup(kiosk.GroupAzureAD, "Kiosks"), "**Group:** Kiosks\n**Group Type:** AzureActiveDirectoryGroup\n"},
		{kiosk.GlobalProfile(), "Global Profile (all non-admin users)"},
		{kiosk.AutoLogon("Lobby"), "**Display Name:** Lobby\n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.account.Kind), func(t *testing.T) {
			cfg := multiConfig()
			cfg.Mode = kiosk.ModeRestricted
			cfg.Account = tt.account
			if md := Markdown(cfg, generatedAt); !strings.Contains(md, tt.expected) {
				t.Errorf("Markdown() missing %q in:\n%s", tt.expected, md)
			}
		})
	}
}
