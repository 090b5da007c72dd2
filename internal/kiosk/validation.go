package kiosk

import (
	"fmt"
	"strings"
)

// Validate checks cfg for problems that would make the exported document
// fail on a device. It returns every problem found; an empty slice means
// the configuration is complete.
func Validate(cfg *Configuration) []error {
	var errors []error

	if err := ValidateProfileID(cfg.ProfileID); err != nil {
		errors = append(errors, err)
	}

	errors = append(errors, ValidateAccount(cfg.Mode, cfg.Account)...)

	if !cfg.Mode.Valid() {
		errors = append(errors, NewValidationError("mode", fmt.Sprintf("unknown mode %q", cfg.Mode)))
		return errors
	}

	if cfg.Mode == ModeSingle {
		errors = append(errors, ValidateSingleApp(cfg.SingleApp)...)
	} else {
		errors = append(errors, ValidateMultiApp(cfg)...)
	}

	return errors
}

// ValidateProfileID validates the profile GUID.
func ValidateProfileID(id string) error {
	if strings.TrimSpace(id) == "" {
		return NewValidationError("profileId", "Profile GUID is required")
	}
	if !IsValidProfileID(id) {
		return NewValidationError("profileId", fmt.Sprintf("Profile GUID %q must look like {xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx}", id))
	}
	return nil
}

// ValidateAccount validates the fields of the active account binding.
func ValidateAccount(mode Mode, a AccountBinding) []error {
	var errors []error

	switch a.Kind {
	case AccountAuto:
		// The display name is optional; the device picks a default.
	case AccountExisting:
		if strings.TrimSpace(a.AccountName) == "" {
			errors = append(errors, NewValidationError("accountName", "Account name is required for an existing account"))
		}
	case AccountGroup:
		if strings.TrimSpace(a.GroupName) == "" {
			errors = append(errors, NewValidationError("groupName", "Group name is required for a user group"))
		}
		if !a.GroupType.Valid() {
			errors = append(errors, NewValidationError("groupType", fmt.Sprintf("Group type %q is not supported", a.GroupType)))
		}
	case AccountGlobal:
	default:
		errors = append(errors, NewValidationError("account", fmt.Sprintf("unknown account type %q", a.Kind)))
	}

	if a.RestrictedOnly() && mode != ModeRestricted {
		errors = append(errors, NewValidationError("account", "User group and global profile accounts require restricted mode"))
	}

	return errors
}

// ValidateSingleApp validates the required fields of the single-app variant.
func ValidateSingleApp(app SingleApp) []error {
	var errors []error

	switch app.Kind {
	case AppEdge:
		if app.Edge.Source == SourceFile {
			if strings.TrimSpace(app.Edge.FilePath) == "" {
				errors = append(errors, NewValidationError("edge.filePath", "Edge local file path is required"))
			}
		} else if strings.TrimSpace(app.Edge.URL) == "" {
			errors = append(errors, NewValidationError("edge.url", "Edge URL is required"))
		}
		if app.Edge.IdleTimeoutMinutes < 0 {
			errors = append(errors, NewValidationError("edge.idleTimeoutMinutes", "Idle timeout cannot be negative"))
		}
	case AppUWP:
		if strings.TrimSpace(app.AUMID) == "" {
			errors = append(errors, NewValidationError("aumid", "App User Model ID is required for a UWP app"))
		}
	case AppWin32:
		if strings.TrimSpace(app.Path) == "" {
			errors = append(errors, NewValidationError("path", "Application path is required for a Win32 app"))
		}
	default:
		errors = append(errors, NewValidationError("singleApp", fmt.Sprintf("unknown app type %q", app.Kind)))
	}

	if app.Breakout != nil && strings.TrimSpace(app.Breakout.Key) == "" {
		errors = append(errors, NewValidationError("breakout", "Breakout sequence needs a final key"))
	}

	return errors
}

// ValidateMultiApp validates the allow list and pins of a multi-app or
// restricted configuration.
func ValidateMultiApp(cfg *Configuration) []error {
	var errors []error

	if len(cfg.AllowedApps) == 0 {
		errors = append(errors, NewValidationError("allowedApps", "At least one allowed app is required"))
	}

	for _, pin := range cfg.StartPins {
		switch pin.Kind {
		case PinDesktopAppLink:
			if pin.NeedsTarget() {
				errors = append(errors, NewValidationError("startPins", fmt.Sprintf("Pin %q needs a target path", pinLabel(pin))))
			}
		case PinSecondaryTile:
			if strings.TrimSpace(pin.Args) == "" {
				errors = append(errors, NewValidationError("startPins", fmt.Sprintf("Tile %q needs a URL", pinLabel(pin))))
			}
		}
	}

	return errors
}

func pinLabel(p Pin) string {
	if p.Name == "" {
		return "(unnamed)"
	}
	return p.Name
}
