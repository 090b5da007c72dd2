package urls

// AssignedAccessXML is the schema reference for the configuration document.
const AssignedAccessXML = "https://learn.microsoft.com/en-us/windows/configuration/assigned-access/xsd"

// AssignedAccessCSP documents deploying the document through MDM (Intune, OMA-URI).
const AssignedAccessCSP = "https://learn.microsoft.com/en-us/windows/client-management/mdm/assignedaccess-csp"

// EdgeKiosk covers the --kiosk and --edge-kiosk-type switches.
const EdgeKiosk = "https://learn.microsoft.com/en-us/deployedge/microsoft-edge-configure-kiosk-mode"

// StartLayout explains Start pins and the StartPins JSON payload.
const StartLayout = "https://learn.microsoft.com/en-us/windows/configuration/start/layout"

// TaskbarLayout explains the taskbar pin list XML.
const TaskbarLayout = "https://learn.microsoft.com/en-us/windows/configuration/taskbar/pinned-apps"

// FindAUMID describes how to look up the App User Model ID of an installed app.
const FindAUMID = "https://learn.microsoft.com/en-us/windows/configuration/store/find-aumid"

// PsExec is needed to run the deployment script as SYSTEM.
const PsExec = "https://learn.microsoft.com/en-us/sysinternals/downloads/psexec"
