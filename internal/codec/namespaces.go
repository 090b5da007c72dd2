package codec

// Schema namespaces of the Assigned Access configuration document.
const (
	NSDefault = "http://schemas.microsoft.com/AssignedAccess/2017/config"
	NSRS5     = "http://schemas.microsoft.com/AssignedAccess/201901/config"
	NSV3      = "http://schemas.microsoft.com/AssignedAccess/2020/config"
	NSV4      = "http://schemas.microsoft.com/AssignedAccess/2021/config"
	NSV5      = "http://schemas.microsoft.com/AssignedAccess/2022/config"
)

// Conventional prefixes bound to the versioned namespaces.
const (
	PrefixRS5 = "rs5"
	PrefixV3  = "v3"
	PrefixV4  = "v4"
	PrefixV5  = "v5"
)

// RootElement is the local name of the document element.
const RootElement = "AssignedAccessConfiguration"

// Start and taskbar layout namespaces used inside v5:TaskbarLayout.
const (
	NSLayoutModification = "http://schemas.microsoft.com/Start/2014/LayoutModification"
	NSFullDefaultLayout  = "http://schemas.microsoft.com/Start/2014/FullDefaultLayout"
	NSStartLayout        = "http://schemas.microsoft.com/Start/2014/StartLayout"
	NSTaskbarLayout      = "http://schemas.microsoft.com/Start/2014/TaskbarLayout"
)

// DefaultShortcutDir is where the deployment script creates Start menu
// shortcuts; desktopAppLink pins without a system shortcut point here.
const DefaultShortcutDir = `%ALLUSERSPROFILE%\Microsoft\Windows\Start Menu\Programs`

// DefaultDisplayName is written when an auto-logon account has no display name.
const DefaultDisplayName = "Kiosk"
