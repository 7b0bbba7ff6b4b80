package classfile

import "fmt"

// Tag identifies the kind of a constant pool entry.
type Tag uint8

const (
	TagUtf8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldref           Tag = 9
	TagMethodref          Tag = 10
	TagInterfaceMethodref Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagDynamic            Tag = 17
	TagInvokeDynamic      Tag = 18
	TagModule             Tag = 19
	TagPackage            Tag = 20
)

var tagNames = map[Tag]string{
	TagUtf8:               "Utf8",
	TagInteger:            "Integer",
	TagFloat:              "Float",
	TagLong:               "Long",
	TagDouble:             "Double",
	TagClass:              "Class",
	TagString:             "String",
	TagFieldref:           "Fieldref",
	TagMethodref:          "Methodref",
	TagInterfaceMethodref: "InterfaceMethodref",
	TagNameAndType:        "NameAndType",
	TagMethodHandle:       "MethodHandle",
	TagMethodType:         "MethodType",
	TagDynamic:            "Dynamic",
	TagInvokeDynamic:      "InvokeDynamic",
	TagModule:             "Module",
	TagPackage:            "Package",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

// Constant is one constant pool entry. Which fields are meaningful depends
// on Tag:
//
//	Utf8                        Utf8
//	Integer, Float              Int (raw bits for Float)
//	Long, Double                Long (raw bits for Double)
//	Class, String, MethodType,
//	Module, Package             Index1
//	Fieldref, Methodref,
//	InterfaceMethodref          Index1 = class, Index2 = name and type
//	NameAndType                 Index1 = name, Index2 = descriptor
//	Dynamic, InvokeDynamic      Index1 = bootstrap method, Index2 = name and type
//	MethodHandle                RefKind, Index1 = reference
//
// The slot following a Long or Double holds a zero Constant.
type Constant struct {
	Tag     Tag
	Utf8    string
	Int     int32
	Long    int64
	Index1  uint16
	Index2  uint16
	RefKind uint8
}

// wide reports whether the entry occupies two constant pool slots.
func (c Constant) wide() bool {
	return c.Tag == TagLong || c.Tag == TagDouble
}
