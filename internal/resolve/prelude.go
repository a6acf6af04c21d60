package resolve

// Names visible in every module without an import. Trait and type paths
// point outside the crate.
var preludeTypes = map[string]Res{
	"Future":       ExternRes(DefTrait, "core::future::Future"),
	"IntoFuture":   ExternRes(DefTrait, "core::future::IntoFuture"),
	"Iterator":     ExternRes(DefTrait, "core::iter::Iterator"),
	"IntoIterator": ExternRes(DefTrait, "core::iter::IntoIterator"),
	"Debug":        ExternRes(DefTrait, "core::fmt::Debug"),
	"Display":      ExternRes(DefTrait, "core::fmt::Display"),
	"Clone":        ExternRes(DefTrait, "core::clone::Clone"),
	"Copy":         ExternRes(DefTrait, "core::marker::Copy"),
	"Send":         ExternRes(DefTrait, "core::marker::Send"),
	"Sync":         ExternRes(DefTrait, "core::marker::Sync"),
	"Sized":        ExternRes(DefTrait, "core::marker::Sized"),
	"Unpin":        ExternRes(DefTrait, "core::marker::Unpin"),
	"Fn":           ExternRes(DefTrait, "core::ops::Fn"),
	"FnMut":        ExternRes(DefTrait, "core::ops::FnMut"),
	"FnOnce":       ExternRes(DefTrait, "core::ops::FnOnce"),
	"Default":      ExternRes(DefTrait, "core::default::Default"),
	"Box":          ExternRes(DefStruct, "alloc::boxed::Box"),
	"Vec":          ExternRes(DefStruct, "alloc::vec::Vec"),
	"String":       ExternRes(DefStruct, "alloc::string::String"),
	"Option":       ExternRes(DefStruct, "core::option::Option"),
	"Result":       ExternRes(DefStruct, "core::result::Result"),
}

var preludeValues = map[string]Res{
	"drop": ExternRes(DefFn, "core::mem::drop"),
}

var primTypes = map[string]bool{
	"bool": true, "char": true, "str": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true, "usize": true,
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true, "isize": true,
	"f32": true, "f64": true,
}
