package gpt

import "github.com/google/uuid"

// PartitionTypeInfo describes a well-known partition-type GUID.
type PartitionTypeInfo struct {
	OSFamily    string
	Description string
}

// well-known partition type GUIDs, per the UEFI spec's appendix and common
// OS conventions.
var partitionTypeRegistry = map[uuid.UUID]PartitionTypeInfo{
	uuid.MustParse("00000000-0000-0000-0000-000000000000"): {"", "Unused entry"},
	uuid.MustParse("C12A7328-F81F-11D2-BA4B-00A0C93EC93B"): {"EFI", "EFI System Partition"},
	uuid.MustParse("024DEE41-33E7-11D3-9D69-0008C781F39F"): {"EFI", "MBR partition scheme"},
	uuid.MustParse("21686148-6449-6E6F-744E-656564454649"): {"EFI", "BIOS boot partition"},
	uuid.MustParse("E3C9E316-0B5C-4DB8-817D-F92DF00215AE"): {"Windows", "Microsoft Reserved Partition"},
	uuid.MustParse("EBD0A0A2-B9E5-4433-87C0-68B6B72699C7"): {"Windows", "Basic data partition"},
	uuid.MustParse("5808C8AA-7E8F-42E0-85D2-E1E90434CFB3"): {"Windows", "Logical Disk Manager metadata partition"},
	uuid.MustParse("AF9B60A0-1431-4F62-BC68-3311714A69AD"): {"Windows", "Logical Disk Manager data partition"},
	uuid.MustParse("DE94BBA4-06D1-4D40-A16A-BFD50179D6AC"): {"Windows", "Windows Recovery Environment"},
	uuid.MustParse("0FC63DAF-8483-4772-8E79-3D69D8477DE4"): {"Linux", "Linux filesystem data"},
	uuid.MustParse("0657FD6D-A4AB-43C4-84E5-0933C84B4F4F"): {"Linux", "Linux swap"},
	uuid.MustParse("A19D880F-05FC-4D3B-A006-743F0F84911E"): {"Linux", "Linux RAID"},
	uuid.MustParse("E6D6D379-F507-44C2-A23C-238F2A3DF928"): {"Linux", "Linux LVM"},
	uuid.MustParse("933AC7E1-2EB4-4F13-B844-0E14E2AEF915"): {"Linux", "Linux /home"},
	uuid.MustParse("CA7D7CCB-63ED-4C53-861C-1742536059CC"): {"Linux", "Linux LUKS"},
	uuid.MustParse("FE3A2A5D-4F32-41A7-B725-ACCC3285A309"): {"ChromeOS", "ChromeOS kernel"},
	uuid.MustParse("3CB8E202-3B7E-47DD-8A3C-7FF2A13CFCEC"): {"ChromeOS", "ChromeOS rootfs"},
	uuid.MustParse("48465300-0000-11AA-AA11-00306543ECAC"): {"macOS", "Hierarchical File System Plus (HFS+)"},
	uuid.MustParse("7C3457EF-0000-11AA-AA11-00306543ECAC"): {"macOS", "Apple APFS"},
	uuid.MustParse("426F6F74-0000-11AA-AA11-00306543ECAC"): {"macOS", "Apple Boot"},
	uuid.MustParse("83BD6B9D-7F41-11DC-BE0B-001560B84F0F"): {"BSD", "FreeBSD boot"},
	uuid.MustParse("516E7CB4-6ECF-11D6-8FF8-00022D09712B"): {"BSD", "FreeBSD UFS"},
	uuid.MustParse("516E7CB6-6ECF-11D6-8FF8-00022D09712B"): {"BSD", "FreeBSD swap"},
	uuid.MustParse("49F48D5A-B10E-11DC-B99B-0019D1879648"): {"BSD", "NetBSD FFS"},
	uuid.MustParse("824CC7A0-36A8-11E3-890A-952519AD3F61"): {"BSD", "OpenBSD data"},
	uuid.MustParse("6A85CF4D-1DD2-11B2-99A6-080020736631"): {"Solaris", "Solaris root"},
	uuid.MustParse("42465331-3BA3-10F1-802A-4861696B7521"): {"Haiku", "Haiku BFS"},
	uuid.MustParse("2568845D-2332-4675-BC39-8FA5A4748D15"): {"Android-IA", "Android-IA bootloader"},
	uuid.MustParse("38F428E6-D326-425D-9140-6E0EA133647C"): {"Android-IA", "Android-IA system"},
	uuid.MustParse("4FBD7E29-9D25-41B8-AFD0-062C0CEFF05D"): {"Ceph", "Ceph OSD"},
}

// unknownPartitionType is what LookupPartitionType returns for a GUID not
// in the registry: an unrecognized type still resolves successfully with
// this label rather than failing the lookup.
var unknownPartitionType = PartitionTypeInfo{OSFamily: "Unknown", Description: "Unknown"}

// LookupPartitionType returns the registered OS family and description for
// a partition type GUID, or unknownPartitionType if it isn't registered.
func LookupPartitionType(typeGUID uuid.UUID) PartitionTypeInfo {
	if info, ok := partitionTypeRegistry[typeGUID]; ok {
		return info
	}
	return unknownPartitionType
}
