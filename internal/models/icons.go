package models

// Icon is a symbolic icon key the front end can render. The set is closed on
// this side so a module row carrying an unknown or empty `icono` value
// resolves to IconDefault instead of producing a broken menu entry.
type Icon string

const (
	IconDashboard Icon = "BarChart3"
	IconTruck     Icon = "Truck"
	IconRoute     Icon = "Route"
	IconFuel      Icon = "Fuel"
	IconToll      Icon = "Coins"
	IconWallet    Icon = "Wallet"
	IconUsers     Icon = "Users"
	IconShield    Icon = "Shield"
	IconSettings  Icon = "Settings"
	IconClipboard Icon = "ClipboardList"
	IconFileText  Icon = "FileText"
	IconMap       Icon = "Map"
	IconCalendar  Icon = "Calendar"
	IconReceipt   Icon = "Receipt"
)

// IconDefault is the guaranteed fallback for missing or unresolvable keys.
const IconDefault = IconFileText

var knownIcons = map[string]Icon{
	string(IconDashboard): IconDashboard,
	string(IconTruck):     IconTruck,
	string(IconRoute):     IconRoute,
	string(IconFuel):      IconFuel,
	string(IconToll):      IconToll,
	string(IconWallet):    IconWallet,
	string(IconUsers):     IconUsers,
	string(IconShield):    IconShield,
	string(IconSettings):  IconSettings,
	string(IconClipboard): IconClipboard,
	string(IconFileText):  IconFileText,
	string(IconMap):       IconMap,
	string(IconCalendar):  IconCalendar,
	string(IconReceipt):   IconReceipt,
}

// ResolveIcon maps a stored icon name to a renderable key, falling back to
// IconDefault. A nil pointer (NULL column) also resolves to the default.
func ResolveIcon(name *string) Icon {
	if name == nil || *name == "" {
		return IconDefault
	}
	if icon, ok := knownIcons[*name]; ok {
		return icon
	}
	return IconDefault
}
